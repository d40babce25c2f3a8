package candidates

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"frontscan/pkg/domain"
	"frontscan/pkg/serrors"

	"github.com/go-faster/jx"
	"golang.org/x/time/rate"
)

// DefaultCrtShURL is the public certificate transparency search endpoint.
const DefaultCrtShURL = "https://crt.sh"

// CrtShOptions configures a CrtSh source.
type CrtShOptions struct {
	// BaseURL defaults to DefaultCrtShURL.
	BaseURL string
	// RateLimit is the maximum request rate per second; zero means unlimited.
	RateLimit float64
	UserAgent string
	// HTTPClient defaults to a client without an overall timeout; each call is
	// bounded by its context.
	HTTPClient *http.Client
}

// CrtSh discovers subdomains from certificate transparency logs. One call is
// one request; wrap it in a RetryPolicy for retries.
type CrtSh struct {
	domain  string
	baseURL string
	ua      string
	client  *http.Client
	limiter *rate.Limiter
}

// NewCrtSh returns a source of the names certificates list under domain.
func NewCrtSh(name string, opts CrtShOptions) *CrtSh {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCrtShURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &CrtSh{
		domain:  strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "."),
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		ua:      opts.UserAgent,
		client:  opts.HTTPClient,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Candidates implements Source. Wildcard names are dropped and only the
// domain itself and names under it are kept, lower-cased, deduplicated and sorted.
func (c *CrtSh) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, serrors.Wrap(serrors.ErrTimeout, err, "waiting for crt.sh rate limit")
	}

	q := url.Values{}
	q.Set("q", "%."+c.domain)
	q.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	res, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, serrors.Wrap(serrors.ErrTimeout, err, "crt.sh request")
		}

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "crt.sh request")
	}
	defer func() {
		_ = res.Body.Close()
	}()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, serrors.With(serrors.ErrRateLimited, "crt.sh rate limited the request")
	case res.StatusCode >= 500:
		return nil, serrors.With(serrors.ErrUnavailable, "crt.sh answered %d", res.StatusCode)
	case res.StatusCode >= 300:
		return nil, serrors.With(serrors.ErrBadRequest, "crt.sh answered %d", res.StatusCode)
	}

	names, err := c.decode(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, serrors.Wrap(serrors.ErrTimeout, err, "reading crt.sh response")
		}

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "decoding crt.sh response")
	}
	if len(names) == 0 {
		return nil, serrors.With(serrors.ErrNoCandidates, "crt.sh lists no subdomains of %s", c.domain)
	}

	return names, nil
}

// decode streams the JSON array of certificate entries and collects name_value lines.
func (c *CrtSh) decode(r io.Reader) ([]domain.Candidate, error) {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		return nil, nil
	}
	d := jx.Decode(br, 4096)

	seen := map[string]struct{}{}
	err := d.Arr(func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "name_value" {
				return d.Skip()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			for _, line := range strings.Split(v, "\n") {
				if name, ok := c.accept(line); ok {
					seen[name] = struct{}{}
				}
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(seen))
	for name := range seen {
		out = append(out, domain.Candidate(name))
	}
	slices.Sort(out)

	return out, nil
}

func (c *CrtSh) accept(line string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(line))
	if name == "" || strings.HasPrefix(name, "*") {
		return "", false
	}
	if name != c.domain && !strings.HasSuffix(name, "."+c.domain) {
		return "", false
	}

	return name, true
}
