// Package metrics wires the otel metric API to a prometheus registry and
// records scan level instruments.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

const meterName = "frontscan"

// NewPrometheusProvider returns a meter provider whose instruments are exported
// through reg, ready to be served by promhttp.
func NewPrometheusProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Recorder holds the scan instruments. The zero value is not usable; build one
// with NewRecorder or NopRecorder.
type Recorder struct {
	candidates metric.Int64Counter
	duration   metric.Float64Histogram
	inflight   metric.Int64UpDownCounter
	scans      metric.Int64Counter
}

// NewRecorder creates the scan instruments on mp.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	m := mp.Meter(meterName)

	candidates, err := m.Int64Counter("frontscan.candidates",
		metric.WithDescription("Candidates that reached a terminal outcome."),
		metric.WithUnit("{candidate}"))
	if err != nil {
		return nil, fmt.Errorf("candidates counter: %w", err)
	}

	duration, err := m.Float64Histogram("frontscan.candidate.duration",
		metric.WithDescription("Time from resolution start to terminal outcome."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("duration histogram: %w", err)
	}

	inflight, err := m.Int64UpDownCounter("frontscan.candidates.inflight",
		metric.WithDescription("Candidates currently being resolved, classified or probed."),
		metric.WithUnit("{candidate}"))
	if err != nil {
		return nil, fmt.Errorf("inflight counter: %w", err)
	}

	scans, err := m.Int64Counter("frontscan.scans",
		metric.WithDescription("Finished scan runs."),
		metric.WithUnit("{scan}"))
	if err != nil {
		return nil, fmt.Errorf("scans counter: %w", err)
	}

	return &Recorder{
		candidates: candidates,
		duration:   duration,
		inflight:   inflight,
		scans:      scans,
	}, nil
}

// NopRecorder returns a recorder that drops every measurement.
func NopRecorder() *Recorder {
	r, _ := NewRecorder(noop.NewMeterProvider())

	return r
}

// CandidateStarted marks one candidate as in flight.
func (r *Recorder) CandidateStarted(ctx context.Context) {
	r.inflight.Add(ctx, 1)
}

// CandidateFinished records the terminal category of a candidate and how long it took.
func (r *Recorder) CandidateFinished(ctx context.Context, category string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("category", category))
	r.inflight.Add(ctx, -1)
	r.candidates.Add(ctx, 1, attrs)
	r.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// ScanFinished counts a finished scan run.
func (r *Recorder) ScanFinished(ctx context.Context, cancelled bool) {
	r.scans.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cancelled", cancelled)))
}
