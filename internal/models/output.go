// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package models

// UnknownTitle is shown for works missing from the works table.
const UnknownTitle = "UNKNOWN"

// SimilarItem is one recommended work
type SimilarItem struct {
	WorkID int64   `json:"work_id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
}

// SimilarResult is the output of `island similar`
type SimilarResult struct {
	WorkID    int64         `json:"work_id"`
	Title     string        `json:"title"`
	Algorithm string        `json:"algorithm"`
	Items     []SimilarItem `json:"items"`
}

// TableCount is the row count of one table
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// GraphSummary describes the staff graph built from the staffs table
type GraphSummary struct {
	Works            int `json:"works"`
	Staff            int `json:"staff"`
	DroppedStaff     int `json:"dropped_staff"`
	Edges            int `json:"edges"`
	AdjacencyEntries int `json:"adjacency_entries"`
	MinStaffFreq     int `json:"min_staff_freq"`
}

// StatsReport is the output of `island stats`
type StatsReport struct {
	Tables []TableCount  `json:"tables"`
	Graph  *GraphSummary `json:"graph,omitempty"`
}
