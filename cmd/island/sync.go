// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tomtom215/island/internal/annict"
	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/supervisor"
	"github.com/tomtom215/island/internal/supervisor/services"
)

var syncWatch bool

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "Keep running and fetch every sync.interval until interrupted")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the configured tables, once or periodically",
	Long: `Fetch every table listed in sync.tables.

Without --watch each table is fetched once, resuming interrupted crawls.
With --watch a supervisor keeps one sync service per table running and
fetches every sync.interval until SIGINT or SIGTERM.

Usage:
  island sync
  island sync --watch`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	tracker, err := openTracker(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(tracker, "progress")

	fetcher, err := newFetcher(cfg, db, tracker)
	if err != nil {
		return err
	}

	if !syncWatch {
		results, fetchErr := fetcher.FetchAll(cmd.Context(), cfg.Sync.Tables, annict.FetchOptions{
			Force:  cfg.Sync.Force,
			Resume: true,
		})
		if err := outputFetchResults(results); err != nil {
			return err
		}
		return fetchErr
	}

	return watch(cmd.Context(), &cfg.Sync, &cfg.Metrics, fetcher)
}

// watch runs the supervised sync daemon until ctx is canceled.
func watch(ctx context.Context, sc *config.SyncConfig, mc *config.MetricsConfig, fetcher services.TableFetcher) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	syncs := make([]*services.SyncService, 0, len(sc.Tables))
	for _, table := range sc.Tables {
		svc := services.NewSyncService(fetcher, services.SyncConfig{
			Table:      table,
			Interval:   sc.Interval,
			Force:      sc.Force,
			RunOnStart: sc.RunOnStart,
		})
		svc.SetOnSyncCompleted(func(res *annict.FetchResult) {
			logging.Info().
				Str("table", res.Table).
				Int("inserted", res.Inserted).
				Int64("total_rows", res.TotalRows).
				Time("synced_at", svc.LastSyncTime()).
				Time("next_sync", svc.LastSyncTime().Add(sc.Interval)).
				Msg("Sync completed")
		})
		tree.AddSyncService(svc)
		syncs = append(syncs, svc)
	}
	if mc.Textfile != "" {
		tree.AddMaintenanceService(services.NewMetricsTextfileService(mc.Textfile, 0))
	}

	logging.Info().Strs("tables", sc.Tables).Dur("interval", sc.Interval).Msg("Sync daemon started")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, s := range report {
			logging.Warn().Str("service", s.Name).Msg("Service did not stop in time")
		}
	}

	for _, svc := range syncs {
		logSyncSummary(svc)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Sync daemon stopped")
	return nil
}

// logSyncSummary logs the run counters of one table sync at shutdown.
func logSyncSummary(svc *services.SyncService) {
	runs, failures := svc.Stats()
	ev := logging.Info().
		Str("service", svc.String()).
		Int("runs", runs).
		Int("failures", failures)
	if last := svc.LastResult(); last != nil {
		ev = ev.Time("last_sync", svc.LastSyncTime()).
			Int("last_inserted", last.Inserted).
			Str("last_stop_reason", last.StopReason)
	}
	ev.Msg("Sync summary")
}
