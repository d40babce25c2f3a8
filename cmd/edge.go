package main

import (
	"fmt"
	"net/netip"
	"text/tabwriter"

	"frontscan/internal/config"
	"frontscan/pkg/edge"

	"github.com/spf13/cobra"
)

func edgeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge [ADDR|HOST...]",
		Short: "Tells whether addresses belong to a known edge network",
	}
	list := cmd.Flags().Bool("list", false, "Print the range table")
	flags := bindScanFlags(cmd, cfg)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.apply(cfg); err != nil {
			return err
		}

		c, err := newComponents(cfg)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		if *list {
			for _, r := range c.table.Ranges() {
				fmt.Fprintf(tw, "%s\t%s\t%s - %s\n", r.Provider.Name, r.Prefix, r.Prefix.Addr(), r.Last())
			}
		}

		for _, arg := range args {
			host := arg
			ip, err := netip.ParseAddr(arg)
			if err != nil {
				if ip, err = c.resolver.ResolveFirst(cmd.Context(), arg, cfg.Scan.Timeout); err != nil {
					fmt.Fprintf(tw, "%s\t-\tunresolved: %v\n", arg, err)

					continue
				}
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\n", host, ip, describeMembership(c.classifier.Classify(cmd.Context(), host, ip)))
		}

		return tw.Flush()
	}

	return cmd
}

func describeMembership(m edge.Membership) string {
	switch {
	case !m.Edge:
		return "not an edge network"
	case m.Source == edge.SourceHeader:
		return fmt.Sprintf("%s (confirmed by %s header)", m.Provider, m.Marker)
	default:
		return fmt.Sprintf("%s (%s)", m.Provider, m.Prefix)
	}
}
