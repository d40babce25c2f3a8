// Package resolver turns a hostname into the single address a scan probes.
//
// Only the first IPv4 answer is used and resolution is never retried here.
package resolver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"frontscan/pkg/serrors"
)

const (
	// ModeSystem resolves through net.Resolver.
	ModeSystem = "system"
	// ModeDNS queries a nameserver directly over the DNS wire protocol.
	ModeDNS = "dns"

	// DefaultNameserver is used by ModeDNS when no nameserver is configured.
	DefaultNameserver = "1.1.1.1:53"
)

// Resolver resolves a hostname to its first IPv4 address.
type Resolver interface {
	// ResolveFirst returns the first address in the provider's answer order.
	// Zero answers and timeouts are ErrDNSFailure; timeouts also match ErrTimeout.
	ResolveFirst(ctx context.Context, host string, timeout time.Duration) (netip.Addr, error)
}

// New returns the resolver for mode. An empty nameserver keeps the system
// configuration in ModeSystem and means DefaultNameserver in ModeDNS.
func New(mode, nameserver string) (Resolver, error) {
	if nameserver != "" {
		ns, err := normalizeNameserver(nameserver)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrResolverUnusable, err, "nameserver %q", nameserver)
		}
		nameserver = ns
	}

	switch mode {
	case ModeSystem, "":
		return NewSystem(nameserver), nil
	case ModeDNS:
		if nameserver == "" {
			nameserver = DefaultNameserver
		}

		return NewDNS(nameserver), nil
	default:
		return nil, serrors.With(serrors.ErrResolverUnusable, "unknown resolver mode %q", mode)
	}
}

// normalizeNameserver adds the default DNS port when ns has none.
func normalizeNameserver(ns string) (string, error) {
	if ap, err := netip.ParseAddrPort(ns); err == nil {
		return ap.String(), nil
	}
	if addr, err := netip.ParseAddr(ns); err == nil {
		return netip.AddrPortFrom(addr, 53).String(), nil
	}
	if _, _, err := net.SplitHostPort(ns); err != nil {
		return "", err
	}

	return ns, nil
}

// failure maps a lookup error to the resolver's error kinds.
func failure(ctx context.Context, host string, err error) error {
	var dnsErr *net.DNSError
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &dnsErr) && dnsErr.IsTimeout) {
		return serrors.Wrap(serrors.ErrDNSFailure,
			serrors.Wrap(serrors.ErrTimeout, err, "timed out"), "resolving %s", host)
	}

	return serrors.Wrap(serrors.ErrDNSFailure, err, "resolving %s", host)
}

func noAddress(host string) error {
	return serrors.With(serrors.ErrDNSFailure, "resolving %s: no IPv4 address", host)
}

// literal returns host as an address when it is an IPv4 literal.
func literal(host string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()

	return addr, addr.Is4()
}
