// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Table names. They double as the Annict response keys.
const (
	TableWorks   = "works"
	TableReviews = "reviews"
	TableRecords = "records"
	TableStaffs  = "staffs"
)

// ErrUnknownTable is returned for table names outside Tables.
var ErrUnknownTable = errors.New("unknown table")

// Tables lists every table in creation order.
var Tables = []string{TableWorks, TableReviews, TableRecords, TableStaffs}

// schemaTimeout bounds DDL during startup.
const schemaTimeout = 30 * time.Second

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), schemaTimeout)
}

// ValidTable reports whether name is a known table.
func ValidTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

func checkTable(name string) error {
	if !ValidTable(name) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return nil
}

// createTables creates every table and index if missing.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, query := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// dt is always written by the application; a CURRENT_TIMESTAMP default
// would return TIMESTAMPTZ and need the ICU extension.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS works (
			id BIGINT PRIMARY KEY,
			title TEXT,
			image_url TEXT,
			dt TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			work_id BIGINT NOT NULL,
			rating_overall_state TEXT,
			dt TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			work_id BIGINT NOT NULL,
			rating_state TEXT,
			dt TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS staffs (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			work_id BIGINT NOT NULL,
			dt TIMESTAMP NOT NULL
		)`,
	}
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_staffs_work_id ON staffs(work_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_work_id ON reviews(work_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_work_id ON records(work_id)`,
	}
}
