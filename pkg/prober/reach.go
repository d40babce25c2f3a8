package prober

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strconv"
	"time"

	"frontscan/pkg/serrors"
)

// Reachability is the result of a direct request to a host.
type Reachability struct {
	Protocol   Protocol
	StatusCode int
	Elapsed    time.Duration
}

// Reach requests host directly, without fronting, trying each protocol in
// order. The first HTTP response of any status wins. When nothing answers the
// error matches ErrUnavailable, and also ErrTimeout if the last attempt timed out.
func (p *Prober) Reach(ctx context.Context, host string, timeout time.Duration) (Reachability, error) {
	start := time.Now()

	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DisableKeepAlives: true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !p.opts.VerifyTLS, //nolint: gosec
		},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}
	defer transport.CloseIdleConnections()
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var lastErr error
	for _, proto := range p.opts.Protocols {
		status, err := p.reachOnce(ctx, client, host, proto, timeout)
		if err != nil {
			lastErr = err

			continue
		}

		return Reachability{Protocol: proto, StatusCode: status, Elapsed: time.Since(start)}, nil
	}

	if failureOf(lastErr) == FailureTimeout {
		lastErr = serrors.Wrap(serrors.ErrTimeout, lastErr, "timed out")
	}

	return Reachability{Elapsed: time.Since(start)}, serrors.Wrap(serrors.ErrUnavailable, lastErr, "%s unreachable", host)
}

func (p *Prober) reachOnce(ctx context.Context, client *http.Client, host string, proto Protocol, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := proto.Scheme + "://" + host
	if proto != HTTPS && proto != HTTP {
		url += ":" + strconv.Itoa(int(proto.Port))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)

	res, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, p.opts.BodyLimit))

	return res.StatusCode, nil
}
