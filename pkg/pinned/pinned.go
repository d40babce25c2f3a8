// Package pinned builds HTTP clients whose connections always go to one fixed
// address, whatever host the request URL names. The URL host still drives the
// TLS server name and the Host header, which is what a fronted request needs.
package pinned

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/netip"
	"time"
)

// Options configures a pinned client.
type Options struct {
	// Addr is where every connection is dialed.
	Addr netip.AddrPort
	// ServerName overrides the TLS server name; empty means the URL host.
	ServerName string
	// VerifyTLS enables certificate verification against ServerName.
	VerifyTLS bool
	// Timeout bounds connect, TLS handshake and the wait for response headers.
	Timeout time.Duration
}

// DialContext returns a dial function that ignores the requested address and
// connects to addr instead.
func DialContext(addr netip.AddrPort, timeout time.Duration) func(ctx context.Context, network, address string) (net.Conn, error) {
	target := addr.String()
	d := &net.Dialer{Timeout: timeout}

	return func(ctx context.Context, network, _ string) (net.Conn, error) {
		return d.DialContext(ctx, network, target)
	}
}

// NewTransport returns a single use transport: keep-alives are disabled and
// HTTP/2 is never negotiated, so each request owns exactly one connection.
func NewTransport(opts Options) *http.Transport {
	return &http.Transport{
		DialContext:       DialContext(opts.Addr, opts.Timeout),
		DisableKeepAlives: true,
		TLSClientConfig: &tls.Config{
			ServerName:         opts.ServerName,
			InsecureSkipVerify: !opts.VerifyTLS, //nolint: gosec
		},
		TLSNextProto:           map[string]func(string, *tls.Conn) http.RoundTripper{},
		TLSHandshakeTimeout:    opts.Timeout,
		ResponseHeaderTimeout:  opts.Timeout,
		MaxResponseHeaderBytes: 64 << 10,
	}
}

// NewClient wraps NewTransport in a client that never follows redirects.
func NewClient(opts Options) *http.Client {
	return &http.Client{
		Transport: NewTransport(opts),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
