package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"frontscan/pkg/domain"
	"frontscan/pkg/logger"
	"frontscan/pkg/metrics"
	"frontscan/pkg/serrors"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const reasonInvalidHost = "invalid hostname"

var tracer = otel.Tracer("frontscan/scanner") //nolint: gochecknoglobals

// Deps are the collaborators of a scanner. They are built once per process and
// shared by every scan; none of them keeps per-scan state.
type Deps struct {
	Resolver   Resolver
	Classifier EdgeClassifier
	Prober     Prober
	// Metrics is optional.
	Metrics *metrics.Recorder
}

// scanner is the concrete implementation of the Scanner interface.
type scanner struct {
	deps Deps
}

// New creates a new Scanner from its collaborators.
func New(deps Deps) Scanner {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NopRecorder()
	}

	return &scanner{deps: deps}
}

// task is one distinct candidate of a scan.
type task struct {
	candidate domain.Candidate
	// invalid tasks terminate without touching the network.
	invalid bool
}

// prepare normalizes and de-duplicates the candidate list, keeping order.
func prepare(candidates []domain.Candidate) []task {
	seen := make(map[domain.Candidate]struct{}, len(candidates))
	tasks := make([]task, 0, len(candidates))
	for _, c := range candidates {
		t := task{candidate: c}
		if host, err := NormalizeHost(string(c)); err == nil {
			t.candidate = domain.Candidate(host)
		} else {
			t.invalid = true
		}
		if _, ok := seen[t.candidate]; ok {
			continue
		}
		seen[t.candidate] = struct{}{}
		tasks = append(tasks, t)
	}

	return tasks
}

// Run drives the pipeline over candidates with a pool of session.Concurrency
// workers. Candidates go to whichever worker frees up first.
//
// ctx is the scan's cancellation signal. It is checked before a candidate
// starts resolving; a started candidate always runs to its terminal outcome,
// bounded by its own timeouts, so a cancelled scan still holds honest partial
// results. The pause between candidates ends early on cancellation.
func (s *scanner) Run(ctx context.Context,
	session Session,
	candidates []domain.Candidate,
	reporter Reporter) (*domain.ScanResult, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	tasks := prepare(candidates)
	if len(tasks) == 0 {
		return nil, serrors.With(serrors.ErrNoCandidates, "no candidates to scan")
	}

	ctx = logger.WithFields(ctx, zap.Stringer("session", session.ID), zap.String("target", session.Target))
	ctx, span := tracer.Start(ctx, "scan", trace.WithAttributes(
		attribute.String("session", session.ID.String()),
		attribute.String("target", session.Target),
		attribute.Int("candidates", len(tasks)),
	))
	defer span.End()

	// in-flight work must not see the scan's cancellation
	work := context.WithoutCancel(ctx)

	acc := newAccumulator(session, len(tasks), reporter)
	if l, ok := reporter.(Lifecycle); ok {
		l.Started(session, len(tasks))
	}
	logger.Info(ctx, "Scan started",
		zap.Int("candidates", len(tasks)),
		zap.Int("concurrency", session.Concurrency),
		zap.Duration("timeout", session.Timeout))

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(session.Concurrency, func(arg any) {
		defer wg.Done()

		t, _ := arg.(task)
		// Pending -> Resolving: the only cancellation point of a candidate
		if ctx.Err() != nil {
			return
		}

		acc.add(s.run(work, session, t))
		if !t.invalid {
			pause(ctx, session.Delay)
		}
	}, ants.WithPanicHandler(func(p any) {
		logger.Error(ctx, "Scan worker panicked", zap.Any("panic", p))
	}))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not create worker pool")
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Invoke(t); err != nil {
			wg.Done()
			logger.Error(ctx, "Could not dispatch candidate", zap.String("candidate", string(t.candidate)), zap.Error(err))

			break
		}
	}
	wg.Wait()
	pool.Release()

	res := acc.finish(ctx.Err() != nil)
	s.deps.Metrics.ScanFinished(ctx, res.Cancelled)
	span.SetAttributes(attribute.Bool("cancelled", res.Cancelled), attribute.Int("outcomes", len(res.Outcomes)))
	if l, ok := reporter.(Lifecycle); ok {
		l.Finished(res)
	}

	logger.Info(ctx, "Scan finished",
		zap.Bool("cancelled", res.Cancelled),
		zap.Int("outcomes", len(res.Outcomes)),
		zap.Int("working", res.Totals.Working),
		zap.Int("restricted", res.Totals.Restricted),
		zap.Duration("elapsed", res.Elapsed))

	return res, nil
}

// Check runs the pipeline for one candidate.
func (s *scanner) Check(ctx context.Context, session Session, candidate domain.Candidate) (domain.ProbeOutcome, error) {
	if err := session.Validate(); err != nil {
		return domain.ProbeOutcome{}, err
	}

	host, err := NormalizeHost(string(candidate))
	if err != nil {
		return domain.ProbeOutcome{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid candidate %q", candidate)
	}

	ctx = logger.WithFields(ctx, zap.Stringer("session", session.ID), zap.String("target", session.Target))

	return s.run(ctx, session, task{candidate: domain.Candidate(host)}), nil
}

// run takes one candidate from Resolving to its terminal outcome.
func (s *scanner) run(ctx context.Context, session Session, t task) domain.ProbeOutcome {
	start := time.Now()

	ctx = logger.WithFields(ctx, zap.String("candidate", string(t.candidate)))
	ctx, span := tracer.Start(ctx, "candidate", trace.WithAttributes(attribute.String("candidate", string(t.candidate))))
	defer span.End()

	s.deps.Metrics.CandidateStarted(ctx)

	var out domain.ProbeOutcome
	if t.invalid {
		out = domain.ProbeOutcome{Category: domain.CategoryDNSFailure, Reason: reasonInvalidHost}
	} else {
		out = s.guarded(ctx, session, t.candidate)
	}
	out.Candidate = t.candidate
	out.Elapsed = time.Since(start)

	span.SetAttributes(attribute.String("category", string(out.Category)))
	if out.IP.IsValid() {
		span.SetAttributes(attribute.String("ip", out.IP.String()))
	}
	if out.Category != domain.CategoryWorking && out.Category != domain.CategoryRestricted {
		span.SetStatus(codes.Error, out.Reason)
	}
	s.deps.Metrics.CandidateFinished(ctx, string(out.Category), out.Elapsed)

	logger.Debug(ctx, "Terminal",
		zap.String("category", string(out.Category)),
		zap.String("reason", out.Reason),
		zap.Duration("elapsed", out.Elapsed))

	return out
}

// guarded runs the pipeline and turns a collaborator panic into a terminal
// outcome so the candidate is still accounted for.
func (s *scanner) guarded(ctx context.Context, session Session, c domain.Candidate) (out domain.ProbeOutcome) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "Candidate pipeline panicked", zap.Any("panic", p), zap.Stack("stack"))
			out = domain.ProbeOutcome{Category: domain.CategorySubdomainIssue, Reason: fmt.Sprintf("internal error: %v", p)}
		}
	}()

	return s.pipeline(ctx, session, c)
}

func (s *scanner) pipeline(ctx context.Context, session Session, c domain.Candidate) domain.ProbeOutcome {
	logger.Debug(ctx, "Resolving")
	ip, err := s.deps.Resolver.ResolveFirst(ctx, string(c), session.Timeout)
	if err != nil {
		reason := "dns resolution failed"
		if errors.Is(err, serrors.ErrTimeout) {
			reason = "dns resolution timed out"
		}

		return domain.ProbeOutcome{Category: domain.CategoryDNSFailure, Reason: reason + ": " + err.Error()}
	}

	logger.Debug(ctx, "Classifying", zap.Stringer("ip", ip))
	m := s.deps.Classifier.Classify(ctx, string(c), ip)
	if !m.Edge {
		return domain.ProbeOutcome{
			Category: domain.CategoryNotEdgeNetwork,
			IP:       ip,
			Reason:   "address outside known edge networks",
		}
	}

	logger.Debug(ctx, "Probing",
		zap.Stringer("ip", ip),
		zap.String("provider", m.Provider),
		zap.String("membership", string(m.Source)))
	out := s.deps.Prober.Probe(ctx, ip, session.Target, session.Timeout)
	out.IP = ip
	out.Provider = m.Provider

	return out
}

// pause waits d or until ctx is done, whichever comes first.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
