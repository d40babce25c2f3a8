package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionID uniquely identifies a scan session.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SessionID uuid.UUID

// NewSessionID returns a fresh random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id SessionID) String() string { return uuid.UUID(id).String() }

// ScanResult aggregates the outcomes of one scan run.
type ScanResult struct {
	SessionID SessionID `json:"sessionId"`
	Target    string    `json:"target"`

	// Outcomes holds one entry per terminated candidate, in completion order.
	Outcomes []ProbeOutcome `json:"outcomes"`
	// Requested is the number of distinct candidates handed to the scan.
	Requested int `json:"requested"`
	// Cancelled is set when the run ended before every candidate terminated.
	Cancelled bool   `json:"cancelled"`
	Totals    Totals `json:"totals"`

	StartedAt time.Time     `json:"startedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Sorted returns a copy of the outcomes ordered for display: by category in
// Categories order, then by candidate name.
func (r *ScanResult) Sorted() []ProbeOutcome {
	out := slices.Clone(r.Outcomes)
	slices.SortStableFunc(out, compareOutcomes)

	return out
}

// ByCategory returns the outcomes of category c sorted by candidate name.
func (r *ScanResult) ByCategory(c Category) []ProbeOutcome {
	var out []ProbeOutcome
	for _, o := range r.Outcomes {
		if o.Category == c {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, compareOutcomes)

	return out
}

// Missing returns how many requested candidates have no outcome.
func (r *ScanResult) Missing() int {
	return max(r.Requested-len(r.Outcomes), 0)
}

func compareOutcomes(a, b ProbeOutcome) int {
	if d := a.Category.rank() - b.Category.rank(); d != 0 {
		return d
	}

	return strings.Compare(string(a.Candidate), string(b.Candidate))
}
