// Package report holds the progress consumers of a scan.
package report

import (
	"context"
	"time"

	"frontscan/internal/scanner"
	"frontscan/pkg/domain"
	"frontscan/pkg/logger"

	"github.com/VividCortex/ewma"
	"go.uber.org/zap"
)

// DefaultLogInterval is how often Log writes a progress line.
const DefaultLogInterval = 5 * time.Second

// Log writes terminal outcomes and periodic progress lines to the logger in
// ctx. Working and Restricted outcomes log at info level, the others at debug.
//
// The scanner serializes calls to Report, so Log keeps no lock.
type Log struct {
	ctx      context.Context //nolint: containedctx
	interval time.Duration

	concurrency int
	latency     ewma.MovingAverage
	lastLine    time.Time
}

// NewLog returns a Log reporter writing a progress line at most once per
// interval. A non-positive interval writes one after every outcome.
func NewLog(ctx context.Context, interval time.Duration) *Log {
	return &Log{
		ctx:         ctx,
		interval:    interval,
		concurrency: 1,
		latency:     ewma.NewMovingAverage(),
	}
}

// Started implements scanner.Lifecycle.
func (l *Log) Started(session scanner.Session, total int) {
	l.concurrency = max(session.Concurrency, 1)
	l.lastLine = time.Now()

	logger.Info(l.ctx, "Scanning candidates",
		zap.Stringer("session", session.ID),
		zap.String("target", session.Target),
		zap.Int("total", total))
}

// Report implements scanner.Reporter.
func (l *Log) Report(p scanner.Progress) {
	o := p.Outcome
	l.latency.Add(o.Elapsed.Seconds())

	fields := []zap.Field{
		zap.String("candidate", string(o.Candidate)),
		zap.String("category", string(o.Category)),
		zap.String("reason", o.Reason),
	}
	if o.IP.IsValid() {
		fields = append(fields, zap.Stringer("ip", o.IP))
	}
	if o.Provider != "" {
		fields = append(fields, zap.String("provider", o.Provider))
	}
	if o.StatusCode != 0 {
		fields = append(fields, zap.Int("status", o.StatusCode), zap.String("protocol", o.Protocol))
	}
	if o.Colo != "" {
		fields = append(fields, zap.String("colo", o.Colo))
	}

	switch o.Category {
	case domain.CategoryWorking, domain.CategoryRestricted:
		logger.Info(l.ctx, o.Category.Label(), fields...)
	default:
		logger.Debug(l.ctx, o.Category.Label(), fields...)
	}

	if time.Since(l.lastLine) < l.interval && p.Completed < p.Total {
		return
	}
	l.lastLine = time.Now()

	logger.Info(l.ctx, "Progress",
		zap.Int("completed", p.Completed),
		zap.Int("total", p.Total),
		zap.Int("working", p.Totals.Working),
		zap.Int("restricted", p.Totals.Restricted),
		zap.Duration("eta", l.ETA(p.Total-p.Completed)))
}

// ETA estimates the time left for remaining candidates from the moving
// average of candidate latency.
func (l *Log) ETA(remaining int) time.Duration {
	if remaining <= 0 {
		return 0
	}
	waves := (remaining + l.concurrency - 1) / l.concurrency

	return time.Duration(l.latency.Value() * float64(waves) * float64(time.Second)).Round(time.Millisecond)
}

// Finished implements scanner.Lifecycle.
func (l *Log) Finished(result *domain.ScanResult) {
	msg := "Scan complete"
	if result.Cancelled {
		msg = "Scan cancelled"
	}

	logger.Info(l.ctx, msg,
		zap.Int("scanned", len(result.Outcomes)),
		zap.Int("requested", result.Requested),
		zap.Int("working", result.Totals.Working),
		zap.Int("restricted", result.Totals.Restricted),
		zap.Int("target_issue", result.Totals.TargetIssue),
		zap.Int("subdomain_issue", result.Totals.SubdomainIssue),
		zap.Int("not_edge", result.Totals.NotEdgeNetwork),
		zap.Int("dns_failure", result.Totals.DNSFailure),
		zap.Duration("elapsed", result.Elapsed))
}
