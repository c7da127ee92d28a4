// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package models

// WorkRef is the nested work object of reviews, records and staffs
type WorkRef struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// UserRef is the nested user object of reviews and records
type UserRef struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// WorkImages holds the image URLs of a work. Only recommended_url is requested.
type WorkImages struct {
	RecommendedURL string `json:"recommended_url"`
}

// Work is an item of GET /v1/works (fields=id,title,images)
type Work struct {
	ID     int64       `json:"id" validate:"gt=0"`
	Title  string      `json:"title" validate:"required"`
	Images *WorkImages `json:"images"`
}

// Review is an item of GET /v1/reviews (fields=id,work.id,user.id,rating_overall_state)
type Review struct {
	ID                 int64    `json:"id" validate:"gt=0"`
	Work               *WorkRef `json:"work" validate:"required"`
	User               *UserRef `json:"user" validate:"required"`
	RatingOverallState *string  `json:"rating_overall_state"`
}

// Record is an item of GET /v1/records (fields=id,work.id,user.id,rating_state)
type Record struct {
	ID          int64    `json:"id" validate:"gt=0"`
	Work        *WorkRef `json:"work" validate:"required"`
	User        *UserRef `json:"user" validate:"required"`
	RatingState *string  `json:"rating_state"`
}

// Staff is an item of GET /v1/staffs (fields=id,name,work.id).
// Name may hold several people joined by "、".
type Staff struct {
	ID   int64    `json:"id" validate:"gt=0"`
	Name string   `json:"name" validate:"required"`
	Work *WorkRef `json:"work" validate:"required"`
}

// Row converts the API work to its stored form.
func (w *Work) Row() WorkRow {
	row := WorkRow{ID: w.ID, Title: w.Title}
	if w.Images != nil {
		row.ImageURL = w.Images.RecommendedURL
	}
	return row
}

// Row converts the API review to its stored form.
func (r *Review) Row() ReviewRow {
	row := ReviewRow{ID: r.ID, WorkID: r.Work.ID, UserID: r.User.ID}
	if r.RatingOverallState != nil {
		row.RatingOverallState = *r.RatingOverallState
	}
	return row
}

// Row converts the API record to its stored form.
func (r *Record) Row() RecordRow {
	row := RecordRow{ID: r.ID, WorkID: r.Work.ID, UserID: r.User.ID}
	if r.RatingState != nil {
		row.RatingState = *r.RatingState
	}
	return row
}

// Row converts the API staff credit to its stored form.
func (s *Staff) Row() StaffRow {
	return StaffRow{ID: s.ID, Name: s.Name, WorkID: s.Work.ID}
}
