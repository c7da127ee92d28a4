// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package progress persists resumable checkpoints for long-running fetches
and imports.

A Checkpoint records the last completed page of an Annict fetch or the last
imported id of a legacy dataset table. Two Tracker implementations exist:

  - BadgerTracker stores one JSON document per key in BadgerDB so a crawl
    interrupted by Ctrl-C or a crash resumes where it stopped.
  - MemoryTracker keeps checkpoints in a map for tests and for runs with
    progress.enabled=false.

Keys are namespaced by operation:

	progress.FetchKey("staffs")   // "fetch/staffs"
	progress.ImportKey("works")   // "import/works"

Load returns (nil, nil) when no checkpoint exists.
*/
package progress
