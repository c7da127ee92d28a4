// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

// Package main is the entry point of the island CLI.
//
// island crawls staff credits, reviews and records from the Annict API into
// a local DuckDB database and answers "works like this one" queries by
// diffusing affinity over the graph of works that share staff.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (a .env file in the working directory is loaded first)
//   - Config file (island.yaml, or --config / CONFIG_PATH)
//   - Built-in defaults
//
// # Exit Codes
//
//	0  success
//	1  general error (invalid arguments, runtime failure)
//	2  configuration error (invalid config, missing token)
//	3  data error (unknown table, unreadable dataset)
//	4  network error (Annict API unreachable or failing)
//
// # Example Usage
//
//	export ANNICT_TOKEN=your-token
//	island fetch staffs
//	island fetch all --resume
//	island import --dir dataset
//	island similar 1234 -n 10
//	island similar --random --human
//	island sync --watch
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/metrics"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	// configPath is the --config flag.
	configPath string

	// logLevel is the --log-level flag; it overrides the configured level.
	logLevel string

	// humanOutput switches output from JSON to aligned text.
	humanOutput bool

	// cfg is loaded once by the root command before any subcommand runs.
	cfg *config.Config
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	if cfg != nil && cfg.Metrics.Textfile != "" {
		if werr := metrics.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logging.Warn().Err(werr).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics textfile")
		}
	}

	if err != nil {
		code := exitCodeFor(err)
		outputError(err)
		return code
	}
	return ExitSuccess
}

var rootCmd = &cobra.Command{
	Use:   "island",
	Short: "Staff-affinity anime recommender",
	Long: `island recommends anime by the staff they share.

Data is crawled from the Annict API (or imported from legacy SQLite
datasets) into a local DuckDB database. Recommendations diffuse affinity
from a work through the staff credited on it to other works.

All commands output JSON by default; use --human for aligned text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search island.yaml, CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// loadConfig loads .env, the layered configuration and initializes logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return configError(fmt.Errorf("load .env: %w", err))
	}

	loaded, err := config.LoadWithKoanf(configPath)
	if err != nil {
		return configError(err)
	}

	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			return configError(fmt.Errorf("invalid --log-level %q", logLevel))
		}
		loaded.Logging.Level = logLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = loaded.Logging.Level
	logCfg.Format = loaded.Logging.Format
	logCfg.Caller = loaded.Logging.Caller
	logging.Init(logCfg)

	cfg = loaded
	logging.Debug().Str("command", cmd.Name()).Str("version", Version).Msg("Configuration loaded")
	return nil
}
