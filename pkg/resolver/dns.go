package resolver

import (
	"context"
	"net/netip"
	"time"

	"frontscan/pkg/serrors"

	"github.com/miekg/dns"
)

// DNS queries one nameserver for A records with miekg/dns.
type DNS struct {
	udp    *dns.Client
	tcp    *dns.Client
	server string
}

// NewDNS returns a resolver querying server ("host:port").
func NewDNS(server string) *DNS {
	return &DNS{
		udp:    &dns.Client{Net: "udp"},
		tcp:    &dns.Client{Net: "tcp"},
		server: server,
	}
}

// ResolveFirst implements Resolver. A truncated UDP answer is repeated over TCP.
func (d *DNS) ResolveFirst(ctx context.Context, host string, timeout time.Duration) (netip.Addr, error) {
	if addr, ok := literal(host); ok {
		return addr, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)

	in, _, err := d.udp.ExchangeContext(ctx, m, d.server)
	if err == nil && in.Truncated {
		in, _, err = d.tcp.ExchangeContext(ctx, m, d.server)
	}
	if err != nil {
		return netip.Addr{}, failure(ctx, host, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, serrors.With(serrors.ErrDNSFailure, "resolving %s: %s", host, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		if addr, ok := netip.AddrFromSlice(a.A); ok {
			return addr.Unmap(), nil
		}
	}

	return netip.Addr{}, noAddress(host)
}
