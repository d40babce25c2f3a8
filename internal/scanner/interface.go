package scanner

import (
	"context"
	"net/netip"
	"time"

	"frontscan/pkg/domain"
	"frontscan/pkg/edge"
)

// Resolver resolves a candidate to the one address that is probed.
type Resolver interface {
	ResolveFirst(ctx context.Context, host string, timeout time.Duration) (netip.Addr, error)
}

// EdgeClassifier decides whether a resolved address belongs to an edge network.
type EdgeClassifier interface {
	Classify(ctx context.Context, host string, ip netip.Addr) edge.Membership
}

// Prober runs the fronting probe against a front address.
type Prober interface {
	Probe(ctx context.Context, front netip.Addr, target string, timeout time.Duration) domain.ProbeOutcome
}

// Scanner runs the resolve, classify and probe pipeline over candidates.
//
//go:generate mockgen -package mockscanner -source=interface.go -destination=mock/mockscanner.go *
type Scanner interface {
	// Run scans every candidate and returns the aggregate result. Cancelling
	// ctx stops dispatch of unstarted candidates; started ones finish. Run only
	// fails when the scan cannot start.
	Run(ctx context.Context, session Session, candidates []domain.Candidate, reporter Reporter) (*domain.ScanResult, error)
	// Check runs the pipeline for a single candidate.
	Check(ctx context.Context, session Session, candidate domain.Candidate) (domain.ProbeOutcome, error)
}
