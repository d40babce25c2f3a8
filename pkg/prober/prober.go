// Package prober checks whether a target service can be reached through a
// front address: the connection goes to the front while the TLS server name
// and the Host header claim the target.
package prober

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"regexp"
	"strings"
	"time"

	"frontscan/pkg/domain"
	"frontscan/pkg/pinned"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DefaultBodyLimit caps how much of a response body is read.
const DefaultBodyLimit = 4096

// coloRegexp extracts the point of presence code from cf-ray or x-amz-cf-pop.
var coloRegexp = regexp.MustCompile(`[A-Z]{3}`)

// Options configures a Prober.
type Options struct {
	// Protocols is the attempt order. Defaults to DefaultProtocols.
	Protocols []Protocol
	// Markers are response headers proving the edge served the response.
	Markers []string
	// VerifyTLS enables certificate verification against the target name.
	VerifyTLS bool
	UserAgent string
	// BodyLimit caps how much of a 400 body is read for the HTTPS hint.
	BodyLimit int64
}

// Prober runs fronting probes. It holds no connection state between probes and
// is safe for concurrent use.
type Prober struct {
	opts Options
}

// New returns a prober, filling unset options with defaults.
func New(opts Options) *Prober {
	if len(opts.Protocols) == 0 {
		opts.Protocols = DefaultProtocols()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	markers := make([]string, 0, len(opts.Markers))
	for _, m := range opts.Markers {
		markers = append(markers, strings.ToLower(m))
	}
	opts.Markers = markers

	return &Prober{opts: opts}
}

// attempt is what one protocol variant produced.
type attempt struct {
	proto   Protocol
	status  int
	marker  string
	colo    string
	hint    bool
	failure Failure
	err     error
}

// Probe tries each protocol in order against front, claiming target, and
// classifies the first HTTP response. A 400 asking for HTTPS moves an
// unattempted HTTPS variant of the order to the front of the queue; with none
// left the 400 is classified like any other status. When every attempt fails
// at the transport level the outcome is SubdomainIssue.
//
// The returned outcome carries no candidate or provider; the caller owns those.
func (p *Prober) Probe(ctx context.Context, front netip.Addr, target string, timeout time.Duration) domain.ProbeOutcome {
	start := time.Now()

	queue := append([]Protocol(nil), p.opts.Protocols...)
	attempted := map[Protocol]bool{}
	var (
		failed []attempt
		hinted *attempt
	)

	for len(queue) > 0 {
		proto := queue[0]
		queue = queue[1:]
		if attempted[proto] {
			continue
		}
		attempted[proto] = true

		a := p.attempt(ctx, front, target, proto, timeout)
		if a.failure != FailureNone {
			failed = append(failed, a)

			continue
		}

		if a.status == http.StatusBadRequest && a.hint && hinted == nil {
			if next, ok := nextHTTPS(p.opts.Protocols, attempted); ok {
				hinted = &a
				queue = append([]Protocol{next}, queue...)

				continue
			}
		}

		return p.outcome(front, a, start)
	}

	// the HTTPS retry a hint asked for did not answer: the 400 stands
	if hinted != nil {
		return p.outcome(front, *hinted, start)
	}

	return domain.ProbeOutcome{
		Category: Classify(Signal{Failure: worst(failed)}),
		IP:       front,
		Elapsed:  time.Since(start),
		Reason:   failureReason(failed),
	}
}

func (p *Prober) outcome(front netip.Addr, a attempt, start time.Time) domain.ProbeOutcome {
	category := Classify(Signal{StatusCode: a.status, Marker: a.marker != ""})

	return domain.ProbeOutcome{
		Category:   category,
		IP:         front,
		Protocol:   a.proto.Scheme,
		StatusCode: a.status,
		Marker:     a.marker,
		Colo:       a.colo,
		Elapsed:    time.Since(start),
		Reason:     responseReason(category, a),
	}
}

func (p *Prober) attempt(ctx context.Context, front netip.Addr, target string, proto Protocol, timeout time.Duration) attempt {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a := attempt{proto: proto}

	client := pinned.NewClient(pinned.Options{
		Addr:       netip.AddrPortFrom(front.Unmap(), proto.Port),
		ServerName: target,
		VerifyTLS:  p.opts.VerifyTLS,
		Timeout:    timeout,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proto.Scheme+"://"+target+"/", nil)
	if err != nil {
		a.failure, a.err = FailureConnection, err

		return a
	}
	req.Host = target
	req.Close = true
	req.Header.Set("User-Agent", p.opts.UserAgent)
	req.Header.Set("Accept", "*/*")

	res, err := client.Do(req)
	if err != nil {
		a.failure, a.err = failureOf(err), err

		return a
	}
	defer res.Body.Close()

	a.status = res.StatusCode
	a.marker, a.colo = p.marker(res.Header)

	if res.StatusCode == http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(res.Body, p.opts.BodyLimit))
		a.hint = wantsHTTPS(body)
	}

	return a
}

// marker returns the value of the first configured marker header present and
// the colo code it carries, if any.
func (p *Prober) marker(h http.Header) (string, string) {
	for _, m := range p.opts.Markers {
		v := h.Get(m)
		if v == "" {
			continue
		}
		colo := ""
		if m == "cf-ray" || m == "x-amz-cf-pop" {
			colo = coloRegexp.FindString(v)
		} else if pop := h.Get("x-amz-cf-pop"); pop != "" {
			colo = coloRegexp.FindString(pop)
		}

		return v, colo
	}

	return "", ""
}

// nextHTTPS returns the first HTTPS variant of order not attempted yet.
func nextHTTPS(order []Protocol, attempted map[Protocol]bool) (Protocol, bool) {
	for _, p := range order {
		if p.Scheme == HTTPS.Scheme && !attempted[p] {
			return p, true
		}
	}

	return Protocol{}, false
}

// worst picks the failure reported for an all-failed probe: a concrete
// connection signal wins over a timeout.
func worst(failed []attempt) Failure {
	if len(failed) == 0 {
		return FailureConnection
	}
	for _, a := range failed {
		if a.failure != FailureTimeout {
			return a.failure
		}
	}

	return FailureTimeout
}

func responseReason(c domain.Category, a attempt) string {
	switch c {
	case domain.CategoryWorking:
		return fmt.Sprintf("%s %d through edge", a.proto.Scheme, a.status)
	case domain.CategoryRestricted:
		return fmt.Sprintf("%s %d: edge reachable, origin blocks content", a.proto.Scheme, a.status)
	default:
		if a.status < 400 && a.marker == "" {
			return fmt.Sprintf("%s %d without edge marker", a.proto.Scheme, a.status)
		}

		return fmt.Sprintf("%s %d: target unhealthy or misconfigured", a.proto.Scheme, a.status)
	}
}

func failureReason(failed []attempt) string {
	if len(failed) == 0 {
		return "no protocol attempted"
	}

	parts := make([]string, 0, len(failed))
	for _, a := range failed {
		parts = append(parts, a.proto.Scheme+": "+describe(a.failure))
	}

	return strings.Join(parts, "; ")
}

func describe(f Failure) string {
	switch f {
	case FailureTimeout:
		return "timed out"
	case FailureTLS:
		return "tls handshake failed"
	case FailureRefused:
		return "connection refused"
	default:
		return "connection failed"
	}
}
