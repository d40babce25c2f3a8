package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frontscan/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rec, err := metrics.NewRecorder(mp)
	require.NoError(t, err)

	ctx := context.Background()
	rec.CandidateStarted(ctx)
	rec.CandidateStarted(ctx)
	rec.CandidateFinished(ctx, "WORKING", 120*time.Millisecond)
	rec.ScanFinished(ctx, true)

	got := collect(t, reader)

	inflight, ok := got["frontscan.candidates.inflight"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, inflight.DataPoints, 1)
	require.EqualValues(t, 1, inflight.DataPoints[0].Value)

	candidates, ok := got["frontscan.candidates"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, candidates.DataPoints, 1)
	require.EqualValues(t, 1, candidates.DataPoints[0].Value)
	category, _ := candidates.DataPoints[0].Attributes.Value(attribute.Key("category"))
	require.Equal(t, "WORKING", category.AsString())

	hist, ok := got["frontscan.candidate.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	require.EqualValues(t, 1, hist.DataPoints[0].Count)
	require.Equal(t, metrics.DefaultBuckets, hist.DataPoints[0].Bounds)

	scans, ok := got["frontscan.scans"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	cancelled, _ := scans.DataPoints[0].Attributes.Value(attribute.Key("cancelled"))
	require.True(t, cancelled.AsBool())
}

func TestNopRecorder(t *testing.T) {
	rec := metrics.NopRecorder()
	require.NotPanics(t, func() {
		rec.CandidateStarted(context.Background())
		rec.CandidateFinished(context.Background(), "DNS_FAILURE", time.Second)
		rec.ScanFinished(context.Background(), false)
	})
}

func TestPrometheusProvider(t *testing.T) {
	reg := prometheus.NewRegistry()
	mp, err := metrics.NewPrometheusProvider(reg)
	require.NoError(t, err)

	rec, err := metrics.NewRecorder(mp)
	require.NoError(t, err)
	rec.CandidateStarted(context.Background())
	rec.CandidateFinished(context.Background(), "RESTRICTED", 50*time.Millisecond)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "frontscan_candidates") && f.GetType() == dto.MetricType_COUNTER {
			found = true
		}
	}
	require.True(t, found, "candidates counter should be exported")
}
