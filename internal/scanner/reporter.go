package scanner

import "frontscan/pkg/domain"

// Progress is emitted once per terminated candidate.
type Progress struct {
	Candidate domain.Candidate
	Outcome   domain.ProbeOutcome
	// Totals are the running counts including this outcome.
	Totals domain.Totals
	// Completed is the number of terminated candidates, strictly increasing
	// across the reports of one scan.
	Completed int
	// Total is the number of distinct candidates in the scan.
	Total int
}

// Reporter consumes progress. Reports of one scan are delivered one at a time,
// so implementations need no locking of their own but should return quickly.
type Reporter interface {
	Report(p Progress)
}

// Lifecycle is implemented by reporters that also want the scan boundaries.
type Lifecycle interface {
	Started(session Session, total int)
	Finished(result *domain.ScanResult)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(p Progress)

// Report implements Reporter.
func (f ReporterFunc) Report(p Progress) { f(p) }

// NopReporter discards progress.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Progress) {}

// Reporters fans progress out to several reporters in order.
type Reporters []Reporter

// Report implements Reporter.
func (rs Reporters) Report(p Progress) {
	for _, r := range rs {
		r.Report(p)
	}
}

// Started implements Lifecycle for the members that do.
func (rs Reporters) Started(session Session, total int) {
	for _, r := range rs {
		if l, ok := r.(Lifecycle); ok {
			l.Started(session, total)
		}
	}
}

// Finished implements Lifecycle for the members that do.
func (rs Reporters) Finished(result *domain.ScanResult) {
	for _, r := range rs {
		if l, ok := r.(Lifecycle); ok {
			l.Finished(result)
		}
	}
}
