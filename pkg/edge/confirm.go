package edge

import (
	"context"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"frontscan/pkg/pinned"
)

// MaxConfirmTimeout caps the header confirmation request.
const MaxConfirmTimeout = 5 * time.Second

// ConfirmOptions configures a Confirmer.
type ConfirmOptions struct {
	// Timeout bounds the whole request. It is clamped to MaxConfirmTimeout.
	Timeout time.Duration
	// Port is the HTTPS port to connect to, 443 when zero.
	Port uint16
	// UserAgent is sent with the request when set.
	UserAgent string
}

// Confirmer checks whether a host answers with a provider's marker headers.
type Confirmer struct {
	table *Table
	opts  ConfirmOptions
}

// NewConfirmer returns a confirmer matching responses against the providers of table.
func NewConfirmer(table *Table, opts ConfirmOptions) *Confirmer {
	if opts.Timeout <= 0 || opts.Timeout > MaxConfirmTimeout {
		opts.Timeout = MaxConfirmTimeout
	}
	if opts.Port == 0 {
		opts.Port = 443
	}

	return &Confirmer{table: table, opts: opts}
}

// Confirm sends a HEAD request over HTTPS to ip, presenting host as server
// name, and reports the provider whose markers are present. Any failure
// (timeout, refused connection, TLS error) means not confirmed.
func (c *Confirmer) Confirm(ctx context.Context, host string, ip netip.Addr) (provider *Provider, marker string, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	client := pinned.NewClient(pinned.Options{
		Addr:    netip.AddrPortFrom(ip.Unmap(), c.opts.Port),
		Timeout: c.opts.Timeout,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+host+"/", nil)
	if err != nil {
		return nil, "", false
	}
	req.Close = true
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, "", false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1024))

	return c.match(res.Header)
}

func (c *Confirmer) match(h http.Header) (*Provider, string, bool) {
	for _, p := range c.table.providers {
		for _, m := range p.Markers {
			if h.Get(m) != "" {
				return p, m, true
			}
		}
	}

	server := strings.ToLower(h.Get("Server"))
	if server == "" {
		return nil, "", false
	}
	for _, p := range c.table.providers {
		if p.Server != "" && strings.Contains(server, p.Server) {
			return p, "server", true
		}
	}

	return nil, "", false
}
