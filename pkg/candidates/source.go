// Package candidates supplies the hostnames a scan evaluates as fronts.
//
// Sources are plain producers: the scan engine only consumes the list they
// return. Network backed sources are wrapped in a RetryPolicy; the engine
// itself never retries.
package candidates

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"frontscan/pkg/domain"
	"frontscan/pkg/serrors"
)

// Source produces candidate hostnames.
type Source interface {
	// Candidates returns the candidate list. An empty result is reported as
	// ErrNoCandidates rather than an empty slice.
	Candidates(ctx context.Context) ([]domain.Candidate, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]domain.Candidate, error)

// Candidates implements Source.
func (f SourceFunc) Candidates(ctx context.Context) ([]domain.Candidate, error) { return f(ctx) }

// Static is a fixed candidate list.
type Static []domain.Candidate

// Candidates implements Source. Duplicates are dropped, order is kept.
func (s Static) Candidates(context.Context) ([]domain.Candidate, error) {
	out := dedupe(s)
	if len(out) == 0 {
		return nil, serrors.With(serrors.ErrNoCandidates, "candidate list is empty")
	}

	return out, nil
}

// File reads one candidate per line from a wordlist file.
type File struct {
	Path string
}

// Candidates implements Source.
func (f File) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceUnavailable, err, "opening %s", f.Path)
	}
	defer fh.Close()

	list, err := ReadList(fh)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceUnavailable, err, "reading %s", f.Path)
	}

	return Static(list).Candidates(ctx)
}

// ReadList parses a wordlist: one hostname per line, blank lines and lines
// starting with '#' skipped, surrounding whitespace trimmed.
func ReadList(r io.Reader) ([]domain.Candidate, error) {
	var out []domain.Candidate

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, domain.Candidate(line))
	}

	return out, sc.Err()
}

func dedupe(in []domain.Candidate) []domain.Candidate {
	seen := make(map[domain.Candidate]struct{}, len(in))
	out := make([]domain.Candidate, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}
