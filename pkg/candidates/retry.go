package candidates

import (
	"context"
	"errors"
	"time"

	"frontscan/pkg/domain"
	"frontscan/pkg/logger"
	"frontscan/pkg/serrors"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds how a network backed source is retried: an attempt cap,
// an exponential pause between attempts and a per-attempt timeout that grows
// linearly with the attempt number.
type RetryPolicy struct {
	// Attempts is the total number of tries, at least 1.
	Attempts int
	// InitialInterval is the pause after the first failure.
	InitialInterval time.Duration
	// Multiplier grows the pause after each further failure.
	Multiplier float64
	// MaxInterval caps the pause.
	MaxInterval time.Duration
	// Timeout bounds the first attempt; attempt n is bounded by n*Timeout.
	Timeout time.Duration
}

// DefaultRetryPolicy is three attempts, 2s then 4s apart, with 30s, 60s and
// 90s attempt timeouts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:        3,
		InitialInterval: 2 * time.Second,
		Multiplier:      2,
		MaxInterval:     30 * time.Second,
		Timeout:         30 * time.Second,
	}
}

// Wrap returns src retried under p.
func (p RetryPolicy) Wrap(src Source) Source {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	return &retrying{src: src, policy: p}
}

type retrying struct {
	src    Source
	policy RetryPolicy
}

// permanent errors are not retried.
func permanent(err error) bool {
	return errors.Is(err, serrors.ErrNoCandidates) || errors.Is(err, serrors.ErrBadRequest)
}

func (r *retrying) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	if r.policy.Multiplier > 0 {
		b.Multiplier = r.policy.Multiplier
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.Attempts-1)), ctx)
}

// Candidates implements Source. Exhausting the attempts yields ErrSourceUnavailable
// wrapping the last failure; permanent failures are returned as they are.
func (r *retrying) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	var (
		out     []domain.Candidate
		attempt int
	)

	op := func() error {
		attempt++

		actx := ctx
		if r.policy.Timeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, time.Duration(attempt)*r.policy.Timeout)
			defer cancel()
		}

		got, err := r.src.Candidates(actx)
		if err != nil {
			if permanent(err) {
				return backoff.Permanent(err)
			}

			return err
		}
		out = got

		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn(ctx, "candidate source attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("attempts", r.policy.Attempts),
			zap.Duration("retryIn", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, r.backOff(ctx), notify); err != nil {
		if permanent(err) {
			return nil, err
		}

		return nil, serrors.Wrap(serrors.ErrSourceUnavailable, err, "candidate source failed after %d attempts", attempt)
	}

	return out, nil
}
