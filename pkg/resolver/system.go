package resolver

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// System resolves through the Go resolver, optionally pinned to one nameserver.
type System struct {
	r *net.Resolver
}

// NewSystem returns a System resolver. A non-empty nameserver ("host:port")
// replaces the nameservers of the host configuration.
func NewSystem(nameserver string) *System {
	r := &net.Resolver{}
	if nameserver != "" {
		r.PreferGo = true
		r.Dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer

			return d.DialContext(ctx, network, nameserver)
		}
	}

	return &System{r: r}
}

// ResolveFirst implements Resolver.
func (s *System) ResolveFirst(ctx context.Context, host string, timeout time.Duration) (netip.Addr, error) {
	if addr, ok := literal(host); ok {
		return addr, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := s.r.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, failure(ctx, host, err)
	}
	if len(addrs) == 0 {
		return netip.Addr{}, noAddress(host)
	}

	return addrs[0].Unmap(), nil
}
