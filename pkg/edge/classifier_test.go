package edge_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"frontscan/pkg/edge"

	"github.com/stretchr/testify/require"
)

// silentListener accepts connections and never answers.
func silentListener(t *testing.T) netip.AddrPort {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
			select {
			case <-done:
				return
			default:
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		_ = ln.Close()
	})

	return netip.MustParseAddrPort(ln.Addr().String())
}

func edgeServer(t *testing.T, header, value string) netip.AddrPort {
	t.Helper()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)

			return
		}
		w.Header().Set(header, value)
	}))
	t.Cleanup(srv.Close)

	return netip.MustParseAddrPort(srv.Listener.Addr().String())
}

func TestClassifyCIDR(t *testing.T) {
	table, err := edge.Default()
	require.NoError(t, err)

	c := edge.NewClassifier(table, nil)
	m := c.Classify(context.Background(), "a.example.com", netip.MustParseAddr("104.16.1.1"))
	require.True(t, m.Edge)
	require.Equal(t, "cloudflare", m.Provider)
	require.Equal(t, edge.SourceCIDR, m.Source)
	require.Equal(t, netip.MustParsePrefix("104.16.0.0/13"), m.Prefix)

	m = c.Classify(context.Background(), "b.example.com", netip.MustParseAddr("8.8.8.8"))
	require.False(t, m.Edge)
}

func TestClassifyHeaderConfirmation(t *testing.T) {
	table, err := edge.Default()
	require.NoError(t, err)

	addr := edgeServer(t, "CF-RAY", "7bd32409eda7b020-SJC")
	confirmer := edge.NewConfirmer(table, edge.ConfirmOptions{Timeout: 2 * time.Second, Port: addr.Port()})
	c := edge.NewClassifier(table, confirmer)

	m := c.Classify(context.Background(), "leased.example.com", addr.Addr())
	require.True(t, m.Edge)
	require.Equal(t, "cloudflare", m.Provider)
	require.Equal(t, edge.SourceHeader, m.Source)
	require.Equal(t, "cf-ray", m.Marker)
}

func TestClassifyServerHeaderConfirmation(t *testing.T) {
	table, err := edge.Default()
	require.NoError(t, err)

	addr := edgeServer(t, "Server", "CloudFront")
	c := edge.NewClassifier(table, edge.NewConfirmer(table, edge.ConfirmOptions{Timeout: 2 * time.Second, Port: addr.Port()}))

	m := c.Classify(context.Background(), "leased.example.com", addr.Addr())
	require.True(t, m.Edge)
	require.Equal(t, "cloudfront", m.Provider)
	require.Equal(t, "server", m.Marker)
}

func TestClassifyNoMarker(t *testing.T) {
	table, err := edge.Default()
	require.NoError(t, err)

	addr := edgeServer(t, "X-Whatever", "1")
	c := edge.NewClassifier(table, edge.NewConfirmer(table, edge.ConfirmOptions{Timeout: 2 * time.Second, Port: addr.Port()}))

	require.False(t, c.Classify(context.Background(), "plain.example.com", addr.Addr()).Edge)
}

func TestClassifyConfirmationTimeout(t *testing.T) {
	table, err := edge.Default()
	require.NoError(t, err)

	addr := silentListener(t)
	c := edge.NewClassifier(table, edge.NewConfirmer(table, edge.ConfirmOptions{Timeout: 200 * time.Millisecond, Port: addr.Port()}))

	start := time.Now()
	m := c.Classify(context.Background(), "b.example.com", addr.Addr())
	require.False(t, m.Edge)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestClassifyConfirmationRefused(t *testing.T) {
	table, err := edge.Default()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := netip.MustParseAddrPort(ln.Addr().String())
	require.NoError(t, ln.Close())

	c := edge.NewClassifier(table, edge.NewConfirmer(table, edge.ConfirmOptions{Timeout: time.Second, Port: addr.Port()}))
	require.False(t, c.Classify(context.Background(), "b.example.com", addr.Addr()).Edge)
}
