// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package supervisor runs the long-lived parts of island sync --watch under a
suture v4 supervisor tree.

# Overview

	RootSupervisor ("island")
	├── SyncSupervisor ("sync-layer")
	│   ├── sync-works
	│   ├── sync-reviews
	│   ├── sync-records
	│   └── sync-staffs
	└── MaintenanceSupervisor ("maintenance-layer")
	    └── metrics-textfile (when metrics.textfile is set)

A table sync that keeps failing is restarted with backoff on its own; the
other tables keep running.

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	for _, table := range cfg.Sync.Tables {
	    tree.AddSyncService(services.NewSyncService(fetcher, services.SyncConfig{
	        Table:      table,
	        Interval:   cfg.Sync.Interval,
	        RunOnStart: cfg.Sync.RunOnStart,
	    }))
	}
	return tree.Serve(ctx)
*/
package supervisor
