package main

import (
	"fmt"
	"time"

	"frontscan/internal/config"
	"frontscan/internal/scanner"
	"frontscan/pkg/edge"
	"frontscan/pkg/metrics"
	"frontscan/pkg/prober"
	"frontscan/pkg/resolver"

	"github.com/spf13/cobra"
)

// scanFlags are the flags shared by the commands that run the pipeline. They
// default to the config values and are written back over them.
type scanFlags struct {
	target      string
	concurrency int
	timeout     time.Duration
	delay       time.Duration
	noEnhanced  bool
	resolver    string
	nameserver  string
	protocols   []string
	verifyTLS   bool
}

func bindScanFlags(cmd *cobra.Command, cfg *config.Config) *scanFlags {
	f := &scanFlags{}
	fs := cmd.Flags()

	fs.StringVarP(&f.target, "target", "t", cfg.Scan.Target, "Target host the fronted requests claim")
	fs.IntVarP(&f.concurrency, "concurrency", "n", cfg.Scan.Concurrency, "Maximum candidates in flight")
	fs.DurationVar(&f.timeout, "timeout", cfg.Scan.Timeout, "Timeout of each network operation")
	fs.DurationVar(&f.delay, "delay", cfg.Scan.Delay, "Pause between candidates of one worker, 0 disables it")
	fs.BoolVar(&f.noEnhanced, "no-enhanced", cfg.Scan.NoEnhanced, "Disable header confirmation of edge membership")
	fs.StringVar(&f.resolver, "resolver", cfg.Resolver.Mode, "Resolver mode: system or dns")
	fs.StringVar(&f.nameserver, "nameserver", cfg.Resolver.Nameserver, "Nameserver host:port; empty uses the host configuration in system mode and 1.1.1.1:53 in dns mode")
	fs.StringSliceVar(&f.protocols, "protocols", cfg.Prober.Protocols, "Probe order, scheme or scheme:port")
	fs.BoolVar(&f.verifyTLS, "verify-tls", cfg.Prober.VerifyTLS, "Verify edge certificates against the target name")

	return f
}

// apply writes the flag values over cfg and validates the result.
func (f *scanFlags) apply(cfg *config.Config) error {
	cfg.Scan.Target = f.target
	cfg.Scan.Concurrency = f.concurrency
	cfg.Scan.Timeout = f.timeout
	cfg.Scan.Delay = f.delay
	cfg.Scan.NoEnhanced = f.noEnhanced
	cfg.Resolver.Mode = f.resolver
	cfg.Resolver.Nameserver = f.nameserver
	cfg.Prober.Protocols = f.protocols
	cfg.Prober.VerifyTLS = f.verifyTLS

	return cfg.Validate()
}

// components are the pipeline collaborators built from the config.
type components struct {
	table      *edge.Table
	classifier *edge.Classifier
	resolver   resolver.Resolver
	prober     *prober.Prober
}

func newComponents(cfg *config.Config) (*components, error) {
	table, err := edge.Load(cfg.Edge.RangesFile)
	if err != nil {
		return nil, fmt.Errorf("could not load edge ranges: %w", err)
	}

	var confirmer *edge.Confirmer
	if !cfg.Scan.NoEnhanced {
		confirmer = edge.NewConfirmer(table, edge.ConfirmOptions{
			Timeout:   cfg.Edge.ConfirmTimeout,
			UserAgent: cfg.Prober.UserAgent,
		})
	}

	res, err := resolver.New(cfg.Resolver.Mode, cfg.Resolver.Nameserver)
	if err != nil {
		return nil, err
	}

	protocols, err := prober.ParseProtocols(cfg.Prober.Protocols)
	if err != nil {
		return nil, err
	}

	return &components{
		table:      table,
		classifier: edge.NewClassifier(table, confirmer),
		resolver:   res,
		prober: prober.New(prober.Options{
			Protocols: protocols,
			Markers:   table.Markers(),
			VerifyTLS: cfg.Prober.VerifyTLS,
			UserAgent: cfg.Prober.UserAgent,
			BodyLimit: cfg.Prober.BodyLimit,
		}),
	}, nil
}

func (c *components) scanner(recorder *metrics.Recorder) scanner.Scanner {
	return scanner.New(scanner.Deps{
		Resolver:   c.resolver,
		Classifier: c.classifier,
		Prober:     c.prober,
		Metrics:    recorder,
	})
}
