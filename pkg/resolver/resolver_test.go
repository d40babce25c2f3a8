package resolver_test

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"frontscan/pkg/resolver"
	"frontscan/pkg/serrors"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// startDNS runs an in-process nameserver answering a fixed zone.
func startDNS(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		m.RecursionAvailable = true

		q := r.Question[0]
		switch q.Name {
		case "a.example.com.":
			if q.Qtype == dns.TypeA {
				for _, rr := range []string{
					"a.example.com. 60 IN CNAME edge.example.net.",
					"edge.example.net. 60 IN A 104.16.1.1",
					"edge.example.net. 60 IN A 104.16.1.2",
				} {
					parsed, err := dns.NewRR(rr)
					if err != nil {
						panic(err)
					}
					m.Answer = append(m.Answer, parsed)
				}
			}
		case "empty.example.com.":
		case "nx.example.com.":
			m.SetRcode(r, dns.RcodeNameError)
		case "slow.example.com.":
			return
		default:
			m.SetRcode(r, dns.RcodeRefused)
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func resolvers(t *testing.T) map[string]resolver.Resolver {
	t.Helper()

	ns := startDNS(t)
	system, err := resolver.New(resolver.ModeSystem, ns)
	require.NoError(t, err)
	direct, err := resolver.New(resolver.ModeDNS, ns)
	require.NoError(t, err)

	return map[string]resolver.Resolver{"system": system, "dns": direct}
}

func TestResolveFirst(t *testing.T) {
	for name, r := range resolvers(t) {
		t.Run(name, func(t *testing.T) {
			addr, err := r.ResolveFirst(context.Background(), "a.example.com", 2*time.Second)
			require.NoError(t, err)
			require.Equal(t, netip.MustParseAddr("104.16.1.1"), addr)
		})
	}
}

func TestResolveFirstFailures(t *testing.T) {
	for name, r := range resolvers(t) {
		t.Run(name, func(t *testing.T) {
			for _, host := range []string{"empty.example.com", "nx.example.com"} {
				_, err := r.ResolveFirst(context.Background(), host, 2*time.Second)
				require.ErrorIs(t, err, serrors.ErrDNSFailure, host)
				require.NotErrorIs(t, err, serrors.ErrTimeout, host)
			}
		})
	}
}

func TestResolveFirstTimeout(t *testing.T) {
	for name, r := range resolvers(t) {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			_, err := r.ResolveFirst(context.Background(), "slow.example.com", 300*time.Millisecond)
			require.ErrorIs(t, err, serrors.ErrDNSFailure)
			require.ErrorIs(t, err, serrors.ErrTimeout)
			require.Less(t, time.Since(start), 3*time.Second)
		})
	}
}

func TestResolveFirstLiteral(t *testing.T) {
	r := resolver.NewDNS("127.0.0.1:1")
	addr, err := r.ResolveFirst(context.Background(), "104.16.1.1", time.Second)
	require.NoError(t, err)
	require.Equal(t, netip.MustParseAddr("104.16.1.1"), addr)
}

func TestNew(t *testing.T) {
	_, err := resolver.New("doh", "")
	require.ErrorIs(t, err, serrors.ErrResolverUnusable)

	_, err = resolver.New(resolver.ModeDNS, "not a nameserver")
	require.ErrorIs(t, err, serrors.ErrResolverUnusable)

	r, err := resolver.New(resolver.ModeDNS, "")
	require.NoError(t, err)
	require.IsType(t, &resolver.DNS{}, r)

	r, err = resolver.New(resolver.ModeSystem, "")
	require.NoError(t, err)
	require.IsType(t, &resolver.System{}, r)

	r, err = resolver.New("", "9.9.9.9")
	require.NoError(t, err)
	require.IsType(t, &resolver.System{}, r)
}
