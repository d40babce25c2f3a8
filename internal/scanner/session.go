package scanner

import (
	"time"

	"frontscan/internal/config"
	"frontscan/pkg/domain"
	"frontscan/pkg/serrors"
)

const (
	// DefaultConcurrency is the worker pool size when none is configured.
	DefaultConcurrency = 50
	// DefaultTimeout bounds each network operation of a candidate.
	DefaultTimeout = 10 * time.Second
)

// Options are the per-scan knobs a Session is built from.
type Options struct {
	// Concurrency is the maximum number of candidates in flight.
	Concurrency int
	// Timeout bounds every network operation of one candidate: the DNS
	// lookup, the edge confirmation and each probe attempt.
	Timeout time.Duration
	// Delay is inserted between a worker finishing one candidate and taking
	// the next. Zero disables it.
	Delay time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Concurrency: cfg.Scan.Concurrency,
		Timeout:     cfg.Scan.Timeout,
		Delay:       cfg.Scan.Delay,
	}
}

// Session is the unit of execution of one scan.
type Session struct {
	ID          domain.SessionID
	Target      string
	Concurrency int
	Timeout     time.Duration
	Delay       time.Duration
}

// NewSession builds a session for target. A zero concurrency or timeout takes
// the default.
func NewSession(target string, opts Options) (Session, error) {
	host, err := NormalizeHost(target)
	if err != nil {
		return Session{}, serrors.Wrap(serrors.ErrInvalidTarget, err, "invalid target %q", target)
	}

	s := Session{
		ID:          domain.NewSessionID(),
		Target:      host,
		Concurrency: opts.Concurrency,
		Timeout:     opts.Timeout,
		Delay:       opts.Delay,
	}
	if s.Concurrency == 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}

	return s, s.Validate()
}

// Validate reports whether the session can run.
func (s Session) Validate() error {
	if s.Target == "" {
		return serrors.With(serrors.ErrInvalidTarget, "target is empty")
	}
	if _, err := NormalizeHost(s.Target); err != nil {
		return serrors.Wrap(serrors.ErrInvalidTarget, err, "invalid target %q", s.Target)
	}
	if s.Concurrency < 1 {
		return serrors.With(serrors.ErrBadRequest, "concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.Timeout <= 0 {
		return serrors.With(serrors.ErrBadRequest, "timeout must be positive, got %s", s.Timeout)
	}
	if s.Delay < 0 {
		return serrors.With(serrors.ErrBadRequest, "delay must not be negative, got %s", s.Delay)
	}

	return nil
}
