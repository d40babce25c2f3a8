// Package api configures and exposes the side HTTP server of a scan: metrics,
// profiling, live progress and status.
package api

import (
	"net/http"
	"time"

	"frontscan/internal/config"
	"frontscan/pkg/controller"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options holds configuration for the HTTP server.
// It is typically created from a config.Config via NewOptions.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout bounds plain request handlers. The websocket and pprof
	// routes are exempt.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// Deps are the server's collaborators.
type Deps struct {
	Hub *Hub
	// Gatherer serves the metrics endpoint, prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

// NewServer wires up and returns a configured *http.Server:
//   - Prometheus metrics endpoint (MetricsPath)
//   - /v1/status with the latest scan totals
//   - /v1/progress websocket stream of scan events
//   - pprof endpoints for profiling
//
// The mux is wrapped in the logging middleware.
func NewServer(deps Deps, opts Options) *http.Server {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	timeout := func(h http.Handler) http.Handler {
		if opts.RequestTimeout <= 0 {
			return h
		}

		return http.TimeoutHandler(h, opts.RequestTimeout, `{"error":"request timed out"}`)
	}

	mux := http.NewServeMux()

	mux.Handle(opts.MetricsPath, timeout(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	mux.Handle("GET /v1/status", timeout(http.HandlerFunc(deps.Hub.ServeStatus)))
	mux.HandleFunc("GET /v1/progress", deps.Hub.ServeWS)
	mux.Handle(controller.PprofPath, controller.PprofMux())

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           controller.WithLogger(mux, opts.MetricsPath),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}
