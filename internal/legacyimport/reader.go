// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package legacyimport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Pure-Go SQLite driver for the legacy per-table dataset files
	_ "modernc.org/sqlite"

	"github.com/tomtom215/island/internal/models"
)

// timestampLayouts are the forms SQLite's CURRENT_TIMESTAMP and Python's
// sqlite3 adapter write into the dt column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05Z07:00",
	time.RFC3339Nano,
}

// SQLiteReader reads one table of a legacy dataset file.
type SQLiteReader struct {
	db     *sql.DB
	dbPath string
	table  string
}

// NewSQLiteReader opens dbPath read-only and checks that it holds table.
func NewSQLiteReader(ctx context.Context, dbPath, table string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := verifyTable(ctx, db, table); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("verify table: %w", err)
	}

	return &SQLiteReader{db: db, dbPath: dbPath, table: table}, nil
}

// verifyTable checks that table exists in the attached file.
func verifyTable(ctx context.Context, db *sql.DB, table string) error {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		table,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check table %s: %w", table, err)
	}
	if count == 0 {
		return fmt.Errorf("table %s not found", table)
	}
	return nil
}

// Close closes the underlying connection.
func (r *SQLiteReader) Close() error {
	return r.db.Close()
}

// CountRecordsSince returns the number of rows with an id above sinceID.
func (r *SQLiteReader) CountRecordsSince(ctx context.Context, sinceID int64) (int64, error) {
	var count int64
	// Table names are fixed by the importer, never user input.
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id > ?", r.table)
	if err := r.db.QueryRowContext(ctx, q, sinceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return count, nil
}

// readBatch runs a keyset-paginated query and scans each row with scan.
func readBatch[R any](ctx context.Context, r *SQLiteReader, columns string, sinceID int64, limit int,
	scan func(*sql.Rows) (R, error)) ([]R, error) {
	q := fmt.Sprintf("SELECT %s, CAST(dt AS TEXT) FROM %s WHERE id > ? ORDER BY id ASC LIMIT ?", columns, r.table)
	rows, err := r.db.QueryContext(ctx, q, sinceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close() //nolint:errcheck // read-only query, close error not actionable

	out := make([]R, 0, limit)
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table, err)
	}
	return out, nil
}

// ReadWorks returns up to limit works with an id above sinceID, ordered by id.
func (r *SQLiteReader) ReadWorks(ctx context.Context, sinceID int64, limit int) ([]models.WorkRow, error) {
	return readBatch(ctx, r, "id, title, image_url", sinceID, limit, func(rows *sql.Rows) (models.WorkRow, error) {
		var w models.WorkRow
		var title, image, dt sql.NullString
		if err := rows.Scan(&w.ID, &title, &image, &dt); err != nil {
			return w, err
		}
		w.Title, w.ImageURL, w.FetchedAt = title.String, image.String, parseTimestamp(dt)
		return w, nil
	})
}

// ReadReviews returns up to limit reviews with an id above sinceID, ordered by id.
func (r *SQLiteReader) ReadReviews(ctx context.Context, sinceID int64, limit int) ([]models.ReviewRow, error) {
	return readBatch(ctx, r, "id, user_id, work_id, rating_overall_state", sinceID, limit, func(rows *sql.Rows) (models.ReviewRow, error) {
		var v models.ReviewRow
		var state, dt sql.NullString
		if err := rows.Scan(&v.ID, &v.UserID, &v.WorkID, &state, &dt); err != nil {
			return v, err
		}
		v.RatingOverallState, v.FetchedAt = state.String, parseTimestamp(dt)
		return v, nil
	})
}

// ReadRecords returns up to limit records with an id above sinceID, ordered by id.
func (r *SQLiteReader) ReadRecords(ctx context.Context, sinceID int64, limit int) ([]models.RecordRow, error) {
	return readBatch(ctx, r, "id, user_id, work_id, rating_state", sinceID, limit, func(rows *sql.Rows) (models.RecordRow, error) {
		var v models.RecordRow
		var state, dt sql.NullString
		if err := rows.Scan(&v.ID, &v.UserID, &v.WorkID, &state, &dt); err != nil {
			return v, err
		}
		v.RatingState, v.FetchedAt = state.String, parseTimestamp(dt)
		return v, nil
	})
}

// ReadStaffs returns up to limit staff credits with an id above sinceID, ordered by id.
func (r *SQLiteReader) ReadStaffs(ctx context.Context, sinceID int64, limit int) ([]models.StaffRow, error) {
	return readBatch(ctx, r, "id, name, work_id", sinceID, limit, func(rows *sql.Rows) (models.StaffRow, error) {
		var v models.StaffRow
		var dt sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &v.WorkID, &dt); err != nil {
			return v, err
		}
		v.FetchedAt = parseTimestamp(dt)
		return v, nil
	})
}

// parseTimestamp parses a stored dt value as UTC. Unparseable or NULL
// values yield the zero time, which the store replaces with now.
func parseTimestamp(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	v := strings.TrimSpace(s.String)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
