// Package config loads the scanner configuration from a yaml file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Resolver modes.
const (
	ResolverSystem = "system"
	ResolverDNS    = "dns"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment selects the log format (development, production).
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set.
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// Scan contains the per-scan defaults.
	Scan struct {
		// Target is the hostname fronted requests claim to be for.
		Target string `env:"SCAN_TARGET" yaml:"target"`
		// Concurrency is the maximum number of candidates in flight.
		Concurrency int `env:"SCAN_CONCURRENCY" env-default:"50" yaml:"concurrency"`
		// Timeout bounds every network operation of a candidate.
		Timeout time.Duration `env:"SCAN_TIMEOUT" env-default:"10s" yaml:"timeout"`
		// Delay is the pause a worker takes between candidates.
		Delay time.Duration `env:"SCAN_DELAY" env-default:"150ms" yaml:"delay"`
		// NoEnhanced disables the header confirmation of edge membership.
		NoEnhanced bool `env:"SCAN_NO_ENHANCED" env-default:"false" yaml:"noEnhanced"`
	} `yaml:"scan"`

	Resolver struct {
		// Mode is "system" (net.Resolver) or "dns" (direct queries).
		Mode string `env:"RESOLVER_MODE" env-default:"system" yaml:"mode"`
		// Nameserver is empty by default: the host configuration in system
		// mode, resolver.DefaultNameserver in dns mode.
		Nameserver string `env:"RESOLVER_NAMESERVER" yaml:"nameserver"`
	} `yaml:"resolver"`

	Edge struct {
		// RangesFile replaces the embedded range table when set.
		RangesFile string `env:"EDGE_RANGES_FILE" yaml:"rangesFile"`
		// ConfirmTimeout bounds the header confirmation; it is clamped to 5s.
		ConfirmTimeout time.Duration `env:"EDGE_CONFIRM_TIMEOUT" env-default:"5s" yaml:"confirmTimeout"`
	} `yaml:"edge"`

	Prober struct {
		// Protocols is the attempt order, "scheme" or "scheme:port".
		Protocols []string `env:"PROBER_PROTOCOLS" env-default:"https,http" env-separator:"," yaml:"protocols"`
		VerifyTLS bool     `env:"PROBER_VERIFY_TLS" env-default:"false" yaml:"verifyTLS"`
		UserAgent string   `env:"PROBER_USER_AGENT" yaml:"userAgent"`
		BodyLimit int64    `env:"PROBER_BODY_LIMIT" env-default:"4096" yaml:"bodyLimit"`
	} `yaml:"prober"`

	CrtSh struct {
		BaseURL         string        `env:"CRTSH_BASE_URL" env-default:"https://crt.sh" yaml:"baseURL"`
		Attempts        int           `env:"CRTSH_ATTEMPTS" env-default:"3" yaml:"attempts"`
		Timeout         time.Duration `env:"CRTSH_TIMEOUT" env-default:"30s" yaml:"timeout"`
		InitialInterval time.Duration `env:"CRTSH_INITIAL_INTERVAL" env-default:"2s" yaml:"initialInterval"`
		// RateLimit is the maximum number of requests per second.
		RateLimit float64 `env:"CRTSH_RATE_LIMIT" env-default:"1" yaml:"rateLimit"`
	} `yaml:"crtsh"`

	// HTTP contains the side server configuration.
	HTTP struct {
		// Addr is the address the side server listens on. Empty disables it.
		Addr string `env:"HTTP_ADDR" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a plain request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// GracefulShutdownTimeout is the maximum duration to wait for the side server to drain
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	var cfg Config

	_, err := os.Stat(configPath)
	switch {
	case configPath == "" || errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(&cfg)
	default:
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values no scan can run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Scan.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("scan.concurrency must be at least 1, got %d", c.Scan.Concurrency))
	}
	if c.Scan.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scan.timeout must be positive, got %s", c.Scan.Timeout))
	}
	if c.Scan.Delay < 0 {
		errs = append(errs, fmt.Errorf("scan.delay must not be negative, got %s", c.Scan.Delay))
	}
	if c.Resolver.Mode != ResolverSystem && c.Resolver.Mode != ResolverDNS {
		errs = append(errs, fmt.Errorf("resolver.mode must be %q or %q, got %q", ResolverSystem, ResolverDNS, c.Resolver.Mode))
	}
	for _, p := range c.Prober.Protocols {
		scheme, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(p)), ":")
		if scheme != "https" && scheme != "http" {
			errs = append(errs, fmt.Errorf("prober.protocols: unknown protocol %q", p))
		}
	}
	if c.CrtSh.Attempts < 1 {
		errs = append(errs, fmt.Errorf("crtsh.attempts must be at least 1, got %d", c.CrtSh.Attempts))
	}

	return errors.Join(errs...)
}
