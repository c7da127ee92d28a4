// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"context"
)

// WorkID identifies an anime work. Values come from the Annict work id.
type WorkID int64

// Edge credits one staff member on one work.
type Edge struct {
	// Work is the credited work.
	Work WorkID `json:"work_id"`

	// Staff is a single tokenized staff name.
	Staff string `json:"staff"`
}

// ScoredWork is a work with its affinity score relative to a query work.
// Only the ordering of scores is meaningful.
type ScoredWork struct {
	// Work is the related work.
	Work WorkID `json:"work_id"`

	// Score is the affinity score, higher is closer.
	Score float64 `json:"score"`
}

// Transition is one entry of a work's one-step destination distribution.
type Transition struct {
	// To is the destination work.
	To WorkID `json:"to"`

	// Probability is the share of the source's adjacency pointing at To.
	Probability float64 `json:"probability"`
}

// StaffCredit is a raw credit row: the undelimited staff names of one
// credit record for a work.
type StaffCredit struct {
	// Work is the credited work.
	Work WorkID `json:"work_id"`

	// Names is the raw name string, possibly several names joined by "、".
	Names string `json:"names"`
}

// StaffSource provides the raw staff credits a model is built from.
// This is typically implemented by the database layer.
type StaffSource interface {
	// StaffCredits returns every credit row.
	StaffCredits(ctx context.Context) ([]StaffCredit, error)
}

// Ranker ranks the works related to cur on a staff graph.
//
// Implementations must be safe for concurrent use and must never fail:
// unknown works produce an empty or trivial ranking.
type Ranker interface {
	// Name returns the algorithm identifier used in configuration.
	Name() string

	// Ranks returns at most num works ordered by descending score.
	// The result may include cur itself.
	Ranks(g *Graph, cur WorkID, num, depth int) []ScoredWork
}

// GraphStats summarizes a built staff graph.
type GraphStats struct {
	// Works is the number of works with at least one kept staff member.
	Works int `json:"works"`

	// Staff is the number of staff names that passed the frequency filter.
	Staff int `json:"staff"`

	// DroppedStaff is the number of staff names below the frequency filter.
	DroppedStaff int `json:"dropped_staff"`

	// Edges is the number of distinct (work, staff) credits kept.
	Edges int `json:"edges"`

	// AdjacencyEntries is the summed length of all adjacency lists.
	AdjacencyEntries int `json:"adjacency_entries"`

	// MinStaffFreq is the frequency threshold the graph was built with.
	MinStaffFreq int `json:"min_staff_freq"`
}

// ModelStats reports query counters of a Model.
type ModelStats struct {
	// Algorithm is the active ranker.
	Algorithm string `json:"algorithm"`

	// Graph describes the underlying graph.
	Graph GraphStats `json:"graph"`

	// RequestCount is the total number of SimilarItems calls.
	RequestCount int64 `json:"request_count"`

	// CacheHits is the number of calls answered from the cache.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of calls that ran the ranker.
	CacheMisses int64 `json:"cache_misses"`
}
