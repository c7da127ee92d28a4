// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/island/internal/metrics"
	"github.com/tomtom215/island/internal/models"
)

// Rows are keyed by the Annict id; re-inserting an existing id is a no-op.
const (
	insertWorkQuery   = `INSERT OR IGNORE INTO works (id, title, image_url, dt) VALUES (?, ?, ?, ?)`
	insertReviewQuery = `INSERT OR IGNORE INTO reviews (id, user_id, work_id, rating_overall_state, dt) VALUES (?, ?, ?, ?, ?)`
	insertRecordQuery = `INSERT OR IGNORE INTO records (id, user_id, work_id, rating_state, dt) VALUES (?, ?, ?, ?, ?)`
	insertStaffQuery  = `INSERT OR IGNORE INTO staffs (id, name, work_id, dt) VALUES (?, ?, ?, ?)`
)

// InsertWork stores a work. It reports false when the id already exists.
func (db *DB) InsertWork(ctx context.Context, row *models.WorkRow) (bool, error) {
	n, err := db.InsertWorks(ctx, []models.WorkRow{*row})
	return n == 1, err
}

// InsertReview stores a review. It reports false when the id already exists.
func (db *DB) InsertReview(ctx context.Context, row *models.ReviewRow) (bool, error) {
	n, err := db.InsertReviews(ctx, []models.ReviewRow{*row})
	return n == 1, err
}

// InsertRecord stores a record. It reports false when the id already exists.
func (db *DB) InsertRecord(ctx context.Context, row *models.RecordRow) (bool, error) {
	n, err := db.InsertRecords(ctx, []models.RecordRow{*row})
	return n == 1, err
}

// InsertStaff stores a staff credit. It reports false when the id already exists.
func (db *DB) InsertStaff(ctx context.Context, row *models.StaffRow) (bool, error) {
	n, err := db.InsertStaffs(ctx, []models.StaffRow{*row})
	return n == 1, err
}

// InsertWorks stores works in one transaction and returns how many were new.
func (db *DB) InsertWorks(ctx context.Context, rows []models.WorkRow) (int, error) {
	return db.insertRows(ctx, TableWorks, insertWorkQuery, len(rows), func(i int) []any {
		r := &rows[i]
		return []any{r.ID, nullString(r.Title), nullString(r.ImageURL), timestampOrNow(r.FetchedAt)}
	})
}

// InsertReviews stores reviews in one transaction and returns how many were new.
func (db *DB) InsertReviews(ctx context.Context, rows []models.ReviewRow) (int, error) {
	return db.insertRows(ctx, TableReviews, insertReviewQuery, len(rows), func(i int) []any {
		r := &rows[i]
		return []any{r.ID, r.UserID, r.WorkID, nullString(r.RatingOverallState), timestampOrNow(r.FetchedAt)}
	})
}

// InsertRecords stores records in one transaction and returns how many were new.
func (db *DB) InsertRecords(ctx context.Context, rows []models.RecordRow) (int, error) {
	return db.insertRows(ctx, TableRecords, insertRecordQuery, len(rows), func(i int) []any {
		r := &rows[i]
		return []any{r.ID, r.UserID, r.WorkID, nullString(r.RatingState), timestampOrNow(r.FetchedAt)}
	})
}

// InsertStaffs stores staff credits in one transaction and returns how many were new.
func (db *DB) InsertStaffs(ctx context.Context, rows []models.StaffRow) (int, error) {
	return db.insertRows(ctx, TableStaffs, insertStaffQuery, len(rows), func(i int) []any {
		r := &rows[i]
		return []any{r.ID, r.Name, r.WorkID, timestampOrNow(r.FetchedAt)}
	})
}

// maxInsertRetries bounds retries of a batch that hit a write-write conflict.
const maxInsertRetries = 3

// insertRows executes query once per row inside a single transaction.
// A failure rolls back the whole batch; transaction conflicts are retried
// with exponential backoff.
func (db *DB) insertRows(ctx context.Context, table, query string, n int, args func(i int) []any) (inserted int, err error) {
	if n == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", table, time.Since(start), err)
	}()

	for attempt := 0; attempt < maxInsertRetries; attempt++ {
		inserted, err = db.doInsertRows(ctx, table, query, n, args)
		if err == nil || !isTransactionConflict(err) {
			return inserted, err
		}
		if ctx.Err() != nil {
			return 0, fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}
		if attempt < maxInsertRetries-1 {
			backoff := time.Millisecond * time.Duration(1<<uint(attempt)) // 1ms, 2ms
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return 0, fmt.Errorf("max retries exceeded: %w", err)
}

func (db *DB) doInsertRows(ctx context.Context, table, query string, n int, args func(i int) []any) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s insert: %w", table, err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer closeWithLog(stmt, "prepared statement")

	inserted := 0
	for i := 0; i < n; i++ {
		res, err := stmt.ExecContext(ctx, args(i)...)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for %s: %w", table, err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s insert: %w", table, err)
	}
	return inserted, nil
}

func timestampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// nullString maps "" to SQL NULL, matching rows written by the legacy crawler.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
