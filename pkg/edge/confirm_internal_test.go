package edge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfirmerClampsTimeout(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	require.Equal(t, MaxConfirmTimeout, NewConfirmer(table, ConfirmOptions{Timeout: 30 * time.Second}).opts.Timeout)
	require.Equal(t, MaxConfirmTimeout, NewConfirmer(table, ConfirmOptions{}).opts.Timeout)
	require.Equal(t, time.Second, NewConfirmer(table, ConfirmOptions{Timeout: time.Second}).opts.Timeout)
	require.EqualValues(t, 443, NewConfirmer(table, ConfirmOptions{}).opts.Port)
}
