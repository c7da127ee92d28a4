// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/island/internal/metrics"
	"github.com/tomtom215/island/internal/recommend"
)

// titleChunkSize bounds the number of placeholders in one IN clause.
const titleChunkSize = 500

// Count returns the number of rows in table.
func (db *DB) Count(ctx context.Context, table string) (count int64, err error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("count", table, time.Since(start), err)
	}()

	// table is one of the Tables constants, never user input.
	query := "SELECT COUNT(*) FROM " + table //nolint:gosec // validated by checkTable
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// StaffCredits returns every staff credit ordered by id.
// It satisfies recommend.StaffSource.
func (db *DB) StaffCredits(ctx context.Context) (credits []recommend.StaffCredit, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", TableStaffs, time.Since(start), err)
	}()

	rows, err := db.conn.QueryContext(ctx, `SELECT work_id, name FROM staffs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query staff credits: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var workID int64
		var name string
		if err := rows.Scan(&workID, &name); err != nil {
			return nil, fmt.Errorf("scan staff credit: %w", err)
		}
		credits = append(credits, recommend.StaffCredit{Work: recommend.WorkID(workID), Names: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff credits: %w", err)
	}
	return credits, nil
}

// WorkTitles returns the titles of the given works. Works that are missing
// or have a NULL title are absent from the map.
func (db *DB) WorkTitles(ctx context.Context, ids []recommend.WorkID) (titles map[recommend.WorkID]string, err error) {
	titles = make(map[recommend.WorkID]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", TableWorks, time.Since(start), err)
	}()

	for lo := 0; lo < len(ids); lo += titleChunkSize {
		hi := min(lo+titleChunkSize, len(ids))
		if err := db.workTitlesChunk(ctx, ids[lo:hi], titles); err != nil {
			return nil, err
		}
	}
	return titles, nil
}

func (db *DB) workTitlesChunk(ctx context.Context, ids []recommend.WorkID, titles map[recommend.WorkID]string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
	}

	query := "SELECT id, title FROM works WHERE title IS NOT NULL AND id IN (" + placeholders + ")" //nolint:gosec // placeholders only
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query work titles: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return fmt.Errorf("scan work title: %w", err)
		}
		titles[recommend.WorkID(id)] = title
	}
	return rows.Err()
}

// WorkImage returns the recommended image URL of a work. ok is false when
// the work is unknown or has no image.
func (db *DB) WorkImage(ctx context.Context, id recommend.WorkID) (url string, ok bool, err error) {
	var image sql.NullString
	err = db.conn.QueryRowContext(ctx, `SELECT image_url FROM works WHERE id = ?`, int64(id)).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query work image: %w", err)
	}
	return image.String, image.Valid && image.String != "", nil
}

// Counts returns the row count of every table in Tables order.
func (db *DB) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		n, err := db.Count(ctx, table)
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}
