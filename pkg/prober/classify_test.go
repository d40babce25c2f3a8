package prober_test

import (
	"testing"

	"frontscan/pkg/domain"
	"frontscan/pkg/prober"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		signal prober.Signal
		want   domain.Category
	}{
		{"200 with marker", prober.Signal{StatusCode: 200, Marker: true}, domain.CategoryWorking},
		{"101 with marker", prober.Signal{StatusCode: 101, Marker: true}, domain.CategoryWorking},
		{"301 with marker", prober.Signal{StatusCode: 301, Marker: true}, domain.CategoryWorking},
		{"399 with marker", prober.Signal{StatusCode: 399, Marker: true}, domain.CategoryWorking},
		{"200 without marker", prober.Signal{StatusCode: 200}, domain.CategoryTargetIssue},
		{"302 without marker", prober.Signal{StatusCode: 302}, domain.CategoryTargetIssue},
		{"403 with marker", prober.Signal{StatusCode: 403, Marker: true}, domain.CategoryRestricted},
		{"403 without marker", prober.Signal{StatusCode: 403}, domain.CategoryRestricted},
		{"404 without marker", prober.Signal{StatusCode: 404}, domain.CategoryRestricted},
		{"400 with marker", prober.Signal{StatusCode: 400, Marker: true}, domain.CategoryTargetIssue},
		{"401", prober.Signal{StatusCode: 401, Marker: true}, domain.CategoryTargetIssue},
		{"502 with marker", prober.Signal{StatusCode: 502, Marker: true}, domain.CategoryTargetIssue},
		{"530", prober.Signal{StatusCode: 530}, domain.CategoryTargetIssue},
		{"timeout", prober.Signal{Failure: prober.FailureTimeout}, domain.CategorySubdomainIssue},
		{"tls", prober.Signal{Failure: prober.FailureTLS}, domain.CategorySubdomainIssue},
		{"refused", prober.Signal{Failure: prober.FailureRefused}, domain.CategorySubdomainIssue},
		{"connection", prober.Signal{Failure: prober.FailureConnection}, domain.CategorySubdomainIssue},
		{"no status", prober.Signal{}, domain.CategorySubdomainIssue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prober.Classify(tt.signal)
			require.Equal(t, tt.want, got)
			// same tuple, same outcome
			for range 3 {
				require.Equal(t, got, prober.Classify(tt.signal))
			}
		})
	}
}

func TestParseProtocol(t *testing.T) {
	p, err := prober.ParseProtocol("HTTPS")
	require.NoError(t, err)
	require.Equal(t, prober.HTTPS, p)

	p, err = prober.ParseProtocol("http:8080")
	require.NoError(t, err)
	require.Equal(t, prober.Protocol{Scheme: "http", Port: 8080}, p)
	require.Equal(t, "http:8080", p.String())

	for _, bad := range []string{"ftp", "https:0", "https:70000", "http:x", ""} {
		_, err := prober.ParseProtocol(bad)
		require.Error(t, err, bad)
	}

	ps, err := prober.ParseProtocols([]string{"https", "http"})
	require.NoError(t, err)
	require.Equal(t, prober.DefaultProtocols(), ps)

	_, err = prober.ParseProtocols(nil)
	require.Error(t, err)
}
