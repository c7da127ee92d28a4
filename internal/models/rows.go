// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package models

import (
	"time"
)

// WorkRow is a row of the works table
type WorkRow struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ReviewRow is a row of the reviews table
type ReviewRow struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	WorkID             int64     `json:"work_id"`
	RatingOverallState string    `json:"rating_overall_state,omitempty"`
	FetchedAt          time.Time `json:"fetched_at"`
}

// RecordRow is a row of the records table
type RecordRow struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	WorkID      int64     `json:"work_id"`
	RatingState string    `json:"rating_state,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// StaffRow is a row of the staffs table
type StaffRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	WorkID    int64     `json:"work_id"`
	FetchedAt time.Time `json:"fetched_at"`
}
