package main

import (
	"frontscan/internal/config"
	"frontscan/internal/scanner"
	"frontscan/pkg/domain"

	"github.com/spf13/cobra"
)

func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check CANDIDATE",
		Short: "Runs the fronting pipeline for a single candidate",
		Args:  cobra.ExactArgs(1),
	}
	flags := bindScanFlags(cmd, cfg)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.apply(cfg); err != nil {
			return err
		}

		session, err := scanner.NewSession(cfg.Scan.Target, scanner.NewOptions(cfg))
		if err != nil {
			return err
		}

		c, err := newComponents(cfg)
		if err != nil {
			return err
		}

		out, err := c.scanner(nil).Check(cmd.Context(), session, domain.Candidate(args[0]))
		if err != nil {
			return err
		}

		res := &domain.ScanResult{
			SessionID: session.ID,
			Target:    session.Target,
			Outcomes:  []domain.ProbeOutcome{out},
			Requested: 1,
			Elapsed:   out.Elapsed,
		}
		res.Totals.Add(out.Category)

		return printSummary(cmd.OutOrStdout(), res)
	}

	return cmd
}
