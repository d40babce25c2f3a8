package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"frontscan/internal/api"
	"frontscan/internal/config"
	"frontscan/internal/report"
	"frontscan/internal/scanner"
	"frontscan/pkg/candidates"
	"frontscan/pkg/domain"
	"frontscan/pkg/logger"
	"frontscan/pkg/metrics"
	"frontscan/pkg/serrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setupServer starts the side server on cfg.HTTP.Addr and returns the
// recorder feeding its metrics and a function stopping it.
func setupServer(ctx context.Context, cfg *config.Config, hub *api.Hub) (*metrics.Recorder, func(ctx context.Context), error) {
	mp, err := metrics.NewPrometheusProvider(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, nil, err
	}
	recorder, err := metrics.NewRecorder(mp)
	if err != nil {
		return nil, nil, err
	}

	server := api.NewServer(api.Deps{Hub: hub}, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return recorder, func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		hub.Close()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not stop meter provider", zap.Error(err))
		}
	}, nil
}

// candidateSources builds the sources named by the flags, in flag order.
func candidateSources(cfg *config.Config, file, crtsh, commonDomain string, args []string) []candidates.Source {
	var sources []candidates.Source
	if len(args) > 0 {
		list := make(candidates.Static, 0, len(args))
		for _, a := range args {
			list = append(list, domain.Candidate(a))
		}
		sources = append(sources, list)
	}
	if file != "" {
		sources = append(sources, candidates.File{Path: file})
	}
	if commonDomain != "" {
		sources = append(sources, candidates.Common(candidates.ExtractDomain(commonDomain)))
	}
	if crtsh != "" {
		policy := candidates.DefaultRetryPolicy()
		policy.Attempts = cfg.CrtSh.Attempts
		policy.Timeout = cfg.CrtSh.Timeout
		policy.InitialInterval = cfg.CrtSh.InitialInterval

		sources = append(sources, policy.Wrap(candidates.NewCrtSh(candidates.ExtractDomain(crtsh), candidates.CrtShOptions{
			BaseURL:   cfg.CrtSh.BaseURL,
			RateLimit: cfg.CrtSh.RateLimit,
			UserAgent: cfg.Prober.UserAgent,
		})))
	}

	return sources
}

// gather concatenates the candidates of every source. A source that fails is
// logged and skipped; the scan only fails when nothing is left.
func gather(ctx context.Context, sources []candidates.Source) ([]domain.Candidate, error) {
	if len(sources) == 0 {
		return nil, serrors.With(serrors.ErrNoCandidates, "no candidate source given: pass names, --file, --domain or --crtsh")
	}

	var (
		out  []domain.Candidate
		errs []error
	)
	for _, src := range sources {
		list, err := src.Candidates(ctx)
		if err != nil {
			logger.Warn(ctx, "candidate source failed", zap.Error(err))
			errs = append(errs, err)

			continue
		}
		out = append(out, list...)
	}
	if len(out) == 0 {
		return nil, serrors.Wrap(serrors.ErrNoCandidates, errors.Join(errs...), "no candidates")
	}

	return out, nil
}

// printSummary writes the outcomes grouped by category in display order.
func printSummary(w io.Writer, res *domain.ScanResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	state := "finished"
	if res.Cancelled {
		state = "cancelled"
	}
	fmt.Fprintf(tw, "Scan of %s %s in %s: %d/%d candidates\n",
		res.Target, state, res.Elapsed.Round(time.Millisecond), len(res.Outcomes), res.Requested)

	for _, c := range domain.Categories() {
		outcomes := res.ByCategory(c)
		if len(outcomes) == 0 {
			continue
		}
		fmt.Fprintf(tw, "\n%s (%d)\n", c.Label(), len(outcomes))
		for _, o := range outcomes {
			ip := "-"
			if o.IP.IsValid() {
				ip = o.IP.String()
			}
			status := "-"
			if o.StatusCode != 0 {
				status = fmt.Sprintf("%s %d", o.Protocol, o.StatusCode)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", o.Candidate, ip, dash(o.Provider), status, dash(o.Colo), o.Reason)
		}
	}

	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func scanCommand(cfg *config.Config) *cobra.Command {
	var file, crtsh, commonDomain, listen string

	cmd := &cobra.Command{
		Use:   "scan [candidate...]",
		Short: "Scans candidates for names that can front requests to the target",
	}
	flags := bindScanFlags(cmd, cfg)
	cmd.Flags().StringVarP(&file, "file", "f", "", "File with one candidate per line")
	cmd.Flags().StringVar(&crtsh, "crtsh", "", "Discover candidates of a domain from certificate transparency logs")
	cmd.Flags().StringVar(&commonDomain, "domain", "", "Try the common subdomain prefixes of a domain")
	cmd.Flags().StringVar(&listen, "listen", cfg.HTTP.Addr, "Address of the metrics and progress server, empty disables it")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.apply(cfg); err != nil {
			return err
		}
		cfg.HTTP.Addr = listen

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		session, err := scanner.NewSession(cfg.Scan.Target, scanner.NewOptions(cfg))
		if err != nil {
			return err
		}

		c, err := newComponents(cfg)
		if err != nil {
			return err
		}

		list, err := gather(ctx, candidateSources(cfg, file, crtsh, commonDomain, args))
		if err != nil {
			return err
		}

		reporters := scanner.Reporters{
			report.NewLog(ctx, report.DefaultLogInterval),
			report.NewTerm(os.Stderr),
		}
		recorder := metrics.NopRecorder()
		if cfg.HTTP.Addr != "" {
			hub := api.NewHub()
			var stopServer func(context.Context)
			recorder, stopServer, err = setupServer(ctx, cfg, hub)
			if err != nil {
				return err
			}
			reporters = append(reporters, hub)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
				defer cancel()
				stopServer(shutdownCtx)
			}()
		}

		res, err := c.scanner(recorder).Run(ctx, session, list, reporters)
		if err != nil {
			return err
		}

		return printSummary(cmd.OutOrStdout(), res)
	}

	return cmd
}
