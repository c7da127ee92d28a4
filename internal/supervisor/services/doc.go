// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package services provides suture.Service implementations for the sync daemon.

Each service implements:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and returns ctx.Err() once its context is canceled so the supervisor can
tell a shutdown from a crash.

# Available Services

Table sync (SyncService):
  - Runs an annict fetch of one table every interval
  - Resumes interrupted crawls from their checkpoint
  - Logs failed runs and retries on the next tick

Metrics export (MetricsTextfileService):
  - Rewrites the node_exporter textfile every interval
  - Writes a final snapshot on shutdown
*/
package services
