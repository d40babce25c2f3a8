package report_test

import (
	"bytes"
	"context"
	"net/netip"
	"os"
	"strings"
	"testing"
	"time"

	"frontscan/internal/report"
	"frontscan/internal/scanner"
	"frontscan/pkg/domain"
	"frontscan/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func progress(completed, total int, o domain.ProbeOutcome, totals domain.Totals) scanner.Progress {
	totals.Add(o.Category)

	return scanner.Progress{Candidate: o.Candidate, Outcome: o, Totals: totals, Completed: completed, Total: total}
}

func TestLogReporter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := context.Background()
	l := report.NewLog(ctxWith(ctx, core), 0)

	session, err := scanner.NewSession("target.example.com", scanner.Options{Concurrency: 2})
	require.NoError(t, err)
	l.Started(session, 3)

	var totals domain.Totals
	p := progress(1, 3, domain.ProbeOutcome{
		Candidate:  "cdn.example.com",
		Category:   domain.CategoryWorking,
		IP:         netip.MustParseAddr("104.16.1.1"),
		Provider:   "cloudflare",
		StatusCode: 200,
		Protocol:   "https",
		Colo:       "SJC",
		Elapsed:    time.Second,
	}, totals)
	l.Report(p)
	l.Report(progress(2, 3, domain.ProbeOutcome{
		Candidate: "gone.example.com",
		Category:  domain.CategoryDNSFailure,
		Elapsed:   time.Second,
	}, p.Totals))

	working := logs.FilterMessage(domain.CategoryWorking.Label()).All()
	require.Len(t, working, 1)
	require.Equal(t, zapcore.InfoLevel, working[0].Level)
	fields := working[0].ContextMap()
	require.Equal(t, "cdn.example.com", fields["candidate"])
	require.Equal(t, "cloudflare", fields["provider"])
	require.Equal(t, "SJC", fields["colo"])

	dns := logs.FilterMessage(domain.CategoryDNSFailure.Label()).All()
	require.Len(t, dns, 1)
	require.Equal(t, zapcore.DebugLevel, dns[0].Level)

	lines := logs.FilterMessage("Progress").All()
	require.Len(t, lines, 2)
	require.EqualValues(t, 2, lines[1].ContextMap()["completed"])

	// one remaining candidate over two workers at one second each
	require.Equal(t, time.Second, l.ETA(1))
	require.Equal(t, time.Duration(0), l.ETA(0))

	l.Finished(&domain.ScanResult{Requested: 3, Cancelled: true})
	require.Equal(t, 1, logs.FilterMessage("Scan cancelled").Len())
}

func TestLogReporterInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := report.NewLog(ctxWith(context.Background(), core), time.Hour)

	session, err := scanner.NewSession("target.example.com", scanner.Options{})
	require.NoError(t, err)
	l.Started(session, 3)

	var totals domain.Totals
	for i := 1; i <= 3; i++ {
		p := progress(i, 3, domain.ProbeOutcome{Category: domain.CategorySubdomainIssue}, totals)
		totals = p.Totals
		l.Report(p)
	}

	// only the final report forces a line
	lines := logs.FilterMessage("Progress").All()
	require.Len(t, lines, 1)
	require.EqualValues(t, 3, lines[0].ContextMap()["completed"])
}

func TestTermReporter(t *testing.T) {
	var buf bytes.Buffer
	term := report.NewTermWriter(&buf, 200)
	require.True(t, term.Enabled())

	var totals domain.Totals
	p := progress(1, 2, domain.ProbeOutcome{Candidate: "a-very-long-candidate-name.example.com", Category: domain.CategoryWorking}, totals)
	term.Report(p)
	first := buf.String()
	require.True(t, strings.HasPrefix(first, "\r[1/2] working 1  restricted 0"))
	require.True(t, strings.HasSuffix(first, "a-very-long-candidate-name.example.com"))

	buf.Reset()
	term.Report(progress(2, 2, domain.ProbeOutcome{Candidate: "b.io", Category: domain.CategoryRestricted}, p.Totals))
	require.Len(t, buf.String(), len(first), "shorter line is padded over the previous one")
	require.Contains(t, buf.String(), "restricted 1")

	buf.Reset()
	term.Finished(&domain.ScanResult{})
	require.Equal(t, "\n", buf.String())
}

func TestTermReporterTruncates(t *testing.T) {
	var buf bytes.Buffer
	term := report.NewTermWriter(&buf, 40)

	term.Report(progress(1, 1, domain.ProbeOutcome{Candidate: "cdn.example.com", Category: domain.CategoryWorking}, domain.Totals{}))
	// carriage return plus width-1 columns
	require.Len(t, buf.String(), 40)
}

func TestTermDisabledOnFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	term := report.NewTerm(f)
	require.False(t, term.Enabled())

	term.Report(progress(1, 1, domain.ProbeOutcome{Category: domain.CategoryWorking}, domain.Totals{}))
	term.Finished(&domain.ScanResult{})

	info, err := f.Stat()
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func ctxWith(ctx context.Context, core zapcore.Core) context.Context {
	return logger.WithLogger(ctx, zap.New(core))
}
