package serrors_test

import (
	"errors"
	"fmt"
	"testing"

	"frontscan/pkg/serrors"

	"github.com/stretchr/testify/require"
)

type dialError struct{ addr string }

func (e dialError) Error() string { return "dial " + e.addr }

func TestKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrInvalidTarget,
		serrors.ErrNoCandidates,
		serrors.ErrSourceUnavailable,
		serrors.ErrResolverUnusable,
		serrors.ErrDNSFailure,
		serrors.ErrTimeout,
		serrors.ErrRateLimited,
		serrors.ErrBadRequest,
		serrors.ErrUnavailable,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("no such host")

	e1 := serrors.With(serrors.ErrInvalidTarget, "target %q is not a hostname", "a b")
	require.Equal(t, `target "a b" is not a hostname`, e1.Error())

	e2 := serrors.Wrap(serrors.ErrDNSFailure, cause, "resolving cdn.example.com")
	require.Equal(t, "resolving cdn.example.com: no such host", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrNoCandidates)
	require.Equal(t, "NO_CANDIDATES", e3.Error())
}

func TestIsMatchesKindAndCause(t *testing.T) {
	cause := dialError{"1.1.1.1:53"}
	e := serrors.Wrap(serrors.ErrTimeout, cause, "dns query")

	require.ErrorIs(t, e, serrors.ErrTimeout)
	require.ErrorIs(t, e, cause)
	require.NotErrorIs(t, e, serrors.ErrDNSFailure)

	// kinds survive further fmt wrapping
	wrapped := fmt.Errorf("resolve: %w", e)
	require.ErrorIs(t, wrapped, serrors.ErrTimeout)
}

func TestNestedKinds(t *testing.T) {
	inner := serrors.With(serrors.ErrTimeout, "deadline")
	outer := serrors.Wrap(serrors.ErrDNSFailure, inner, "resolve")

	require.ErrorIs(t, outer, serrors.ErrDNSFailure)
	require.ErrorIs(t, outer, serrors.ErrTimeout)
	require.Equal(t, serrors.ErrDNSFailure, serrors.KindOf(outer))
	require.Nil(t, serrors.KindOf(errors.New("plain")))
}

func TestAsMatchesKindAndCause(t *testing.T) {
	cause := &dialError{"8.8.8.8:53"}
	e := serrors.Wrap(serrors.ErrUnavailable, cause, "crt.sh")

	var k serrors.Kind
	require.ErrorAs(t, e, &k)
	require.Equal(t, serrors.ErrUnavailable, k)

	var de *dialError
	require.ErrorAs(t, e, &de)
	require.Equal(t, cause, de)
}

func TestAccessors(t *testing.T) {
	cause := errors.New("boom")
	e := serrors.Wrap(serrors.ErrSourceUnavailable, cause, "crt.sh unreachable")
	require.Equal(t, serrors.ErrSourceUnavailable, e.Kind())
	require.Equal(t, "crt.sh unreachable", e.Message())
	require.Equal(t, cause, e.Cause())
}
