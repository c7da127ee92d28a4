// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package models defines Island's data structures.

Two families live here:

  - Annict API models (Work, Review, Record, Staff) as returned by the
    REST v1 list endpoints, with validate tags checked before insertion.
  - Row models (WorkRow, ReviewRow, RecordRow, StaffRow) as stored in
    DuckDB and in the legacy SQLite datasets.

API models convert to rows with their Row method. A zero FetchedAt on a
row means "now" to the database layer.

The CLI output types (SimilarResult, StatsReport) are also defined here so
their JSON shape is stable across commands.
*/
package models
