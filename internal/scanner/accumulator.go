package scanner

import (
	"sync"
	"time"

	"frontscan/pkg/domain"
)

// accumulator collects outcomes from concurrent workers. It is the only shared
// mutable state of a scan.
type accumulator struct {
	mu       sync.Mutex
	result   domain.ScanResult
	reporter Reporter
}

func newAccumulator(session Session, total int, reporter Reporter) *accumulator {
	return &accumulator{
		result: domain.ScanResult{
			SessionID: session.ID,
			Target:    session.Target,
			Requested: total,
			Outcomes:  make([]domain.ProbeOutcome, 0, total),
			StartedAt: time.Now(),
		},
		reporter: reporter,
	}
}

// add records one terminal outcome and reports it while still holding the
// lock, which keeps Completed strictly increasing for the reporter.
func (a *accumulator) add(o domain.ProbeOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.result.Outcomes = append(a.result.Outcomes, o)
	a.result.Totals.Add(o.Category)

	a.reporter.Report(Progress{
		Candidate: o.Candidate,
		Outcome:   o,
		Totals:    a.result.Totals,
		Completed: len(a.result.Outcomes),
		Total:     a.result.Requested,
	})
}

// finish returns the final result. cancelled marks a run that was stopped
// with candidates left unstarted.
func (a *accumulator) finish(cancelled bool) *domain.ScanResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := a.result
	res.Outcomes = append([]domain.ProbeOutcome(nil), a.result.Outcomes...)
	res.Cancelled = cancelled && len(res.Outcomes) < res.Requested
	res.Elapsed = time.Since(res.StartedAt)

	return &res
}
