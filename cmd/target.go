package main

import (
	"fmt"
	"time"

	"frontscan/internal/config"
	"frontscan/internal/scanner"
	"frontscan/pkg/prober"
	"frontscan/pkg/serrors"

	"github.com/spf13/cobra"
)

func targetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target HOST",
		Short: "Checks that the target answers when requested directly",
		Args:  cobra.ExactArgs(1),
	}
	timeout := cmd.Flags().Duration("timeout", cfg.Scan.Timeout, "Timeout of each request")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		host, err := scanner.NormalizeHost(args[0])
		if err != nil {
			return serrors.Wrap(serrors.ErrInvalidTarget, err, "invalid target %q", args[0])
		}

		protocols, err := prober.ParseProtocols(cfg.Prober.Protocols)
		if err != nil {
			return err
		}
		p := prober.New(prober.Options{
			Protocols: protocols,
			VerifyTLS: cfg.Prober.VerifyTLS,
			UserAgent: cfg.Prober.UserAgent,
		})

		r, err := p.Reach(cmd.Context(), host, *timeout)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable: %s answered %d in %s\n",
			host, r.Protocol.Scheme, r.StatusCode, r.Elapsed.Round(time.Millisecond))

		return err
	}

	return cmd
}
