// Package main provides the CLI entrypoint of the domain fronting scanner.
// It wires subcommands (scan, check, target, edge), loads configuration, and initializes logging.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"frontscan/internal/config"
	"frontscan/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yml"

// configPath finds the -c/--config value in args. Cobra only parses flags at
// execution, after the config is needed to build the subcommands.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		for _, name := range []string{"-c", "--config"} {
			if a == name && i+1 < len(args) {
				return args[i+1]
			}
			if v, ok := strings.CutPrefix(a, name+"="); ok {
				return v
			}
		}
	}

	return defaultConfigPath
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:           "frontscan",
		Short:         "Finds edge-hosted names that can front requests for a target",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// registered so cobra accepts the flag; its value is read by configPath.
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Config File Path")

	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	if err := logger.Setup(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatal("could not set up logger: ", err)
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		scanCommand(cfg),
		checkCommand(cfg),
		targetCommand(cfg),
		edgeCommand(cfg),
	)

	err = rootCmd.Execute()
	if err != nil {
		logger.Error(ctx, "command failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
