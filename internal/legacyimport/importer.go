// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package legacyimport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/database"
	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/metrics"
	"github.com/tomtom215/island/internal/models"
	"github.com/tomtom215/island/internal/progress"
)

// ErrImportRunning is returned when Import is called while another import
// on the same Importer is in progress.
var ErrImportRunning = errors.New("import already in progress")

// Store is the destination of imported rows. *database.DB implements it.
type Store interface {
	InsertWorks(ctx context.Context, rows []models.WorkRow) (int, error)
	InsertReviews(ctx context.Context, rows []models.ReviewRow) (int, error)
	InsertRecords(ctx context.Context, rows []models.RecordRow) (int, error)
	InsertStaffs(ctx context.Context, rows []models.StaffRow) (int, error)
}

// Options controls a single import run.
type Options struct {
	// Tables to import, in order. Empty means the configured tables.
	Tables []string

	// Fresh discards saved checkpoints and imports from the first id.
	Fresh bool
}

// TableResult summarizes the import of one dataset file.
type TableResult struct {
	Table    string        `json:"table"`
	Path     string        `json:"path"`
	Missing  bool          `json:"missing,omitempty"`
	StartID  int64         `json:"start_id"`
	LastID   int64         `json:"last_id"`
	Total    int64         `json:"total"`
	Read     int64         `json:"read"`
	Inserted int64         `json:"inserted"`
	Existing int64         `json:"existing"`
	Failed   int64         `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// Importer copies the legacy per-table SQLite files into the store.
type Importer struct {
	cfg     *config.ImportConfig
	store   Store
	tracker progress.Tracker

	mu      sync.Mutex
	running bool
}

// NewImporter creates an Importer. A nil tracker disables resuming.
func NewImporter(cfg *config.ImportConfig, store Store, tracker progress.Tracker) *Importer {
	if tracker == nil {
		tracker = progress.NewMemoryTracker()
	}
	return &Importer{cfg: cfg, store: store, tracker: tracker}
}

// Import imports each table from <dataset_dir>/<table>.db. Missing files
// are skipped with a warning. It stops at the first failing table and
// returns the results gathered so far.
func (i *Importer) Import(ctx context.Context, opts Options) ([]*TableResult, error) {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, ErrImportRunning
	}
	i.running = true
	i.mu.Unlock()
	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
	}()

	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	tables := opts.Tables
	if len(tables) == 0 {
		tables = i.cfg.Tables
	}

	results := make([]*TableResult, 0, len(tables))
	for _, table := range tables {
		res, err := i.importTable(ctx, table, opts.Fresh)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, fmt.Errorf("import %s: %w", table, err)
		}
	}
	return results, nil
}

// importTable imports one dataset file, resuming after the last imported id.
func (i *Importer) importTable(ctx context.Context, table string, fresh bool) (*TableResult, error) {
	run, ok := tableImports[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownTable, table)
	}

	log := logging.Ctx(ctx).With().Str("table", table).Logger()
	path := filepath.Join(i.cfg.DatasetDir, table+".db")
	res := &TableResult{Table: table, Path: path}

	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", path).Msg("Dataset file not found, skipping")
			res.Missing = true
			return res, nil
		}
		return res, fmt.Errorf("stat %s: %w", path, err)
	}

	key := progress.ImportKey(table)
	if fresh {
		if err := i.tracker.Clear(ctx, key); err != nil {
			return res, fmt.Errorf("clear checkpoint: %w", err)
		}
	}
	cp, err := i.tracker.Load(ctx, key)
	if err != nil {
		return res, fmt.Errorf("load checkpoint: %w", err)
	}
	if cp == nil {
		cp = &progress.Checkpoint{Table: table}
	}
	cp.RunID = logging.CorrelationIDFromContext(ctx)
	cp.Done = false
	res.StartID, res.LastID = cp.LastID, cp.LastID

	reader, err := NewSQLiteReader(ctx, path, table)
	if err != nil {
		return res, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Error closing SQLite reader")
		}
	}()

	if res.Total, err = reader.CountRecordsSince(ctx, cp.LastID); err != nil {
		return res, err
	}
	log.Info().Int64("start_id", cp.LastID).Int64("records_to_process", res.Total).Str("path", path).Msg("Starting import")

	if err := run(ctx, i, reader, cp, res); err != nil {
		return res, err
	}

	cp.Done = true
	cp.UpdatedAt = time.Now().UTC()
	if err := i.tracker.Save(ctx, key, cp); err != nil {
		log.Warn().Err(err).Msg("Failed to save final checkpoint")
	}

	log.Info().
		Int64("read", res.Read).
		Int64("inserted", res.Inserted).
		Int64("existing", res.Existing).
		Int64("failed", res.Failed).
		Dur("duration", time.Since(start)).
		Msg("Import completed")
	return res, nil
}

// tableImport copies every remaining row of one table.
type tableImport func(ctx context.Context, i *Importer, r *SQLiteReader, cp *progress.Checkpoint, res *TableResult) error

var tableImports = map[string]tableImport{
	database.TableWorks: newTableImport((*SQLiteReader).ReadWorks, Store.InsertWorks,
		func(r models.WorkRow) int64 { return r.ID }),
	database.TableReviews: newTableImport((*SQLiteReader).ReadReviews, Store.InsertReviews,
		func(r models.ReviewRow) int64 { return r.ID }),
	database.TableRecords: newTableImport((*SQLiteReader).ReadRecords, Store.InsertRecords,
		func(r models.RecordRow) int64 { return r.ID }),
	database.TableStaffs: newTableImport((*SQLiteReader).ReadStaffs, Store.InsertStaffs,
		func(r models.StaffRow) int64 { return r.ID }),
}

// newTableImport binds a batch reader and a batch insert for row type R.
func newTableImport[R any](
	read func(*SQLiteReader, context.Context, int64, int) ([]R, error),
	insert func(Store, context.Context, []R) (int, error),
	id func(R) int64,
) tableImport {
	return func(ctx context.Context, i *Importer, r *SQLiteReader, cp *progress.Checkpoint, res *TableResult) error {
		key := progress.ImportKey(r.table)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			rows, err := read(r, ctx, cp.LastID, i.cfg.BatchSize)
			if err != nil {
				return fmt.Errorf("read batch: %w", err)
			}
			if len(rows) == 0 {
				return nil
			}

			inserted, failed := insertBatch(ctx, r.table, rows, func(batch []R) (int, error) {
				return insert(i.store, ctx, batch)
			})
			existing := len(rows) - inserted - failed
			metrics.RecordImportBatch(r.table, inserted, existing, failed)

			res.Read += int64(len(rows))
			res.Inserted += int64(inserted)
			res.Existing += int64(existing)
			res.Failed += int64(failed)
			res.LastID = id(rows[len(rows)-1])

			cp.LastID = res.LastID
			cp.Fetched += int64(len(rows))
			cp.Inserted += int64(inserted)
			cp.UpdatedAt = time.Now().UTC()
			if err := i.tracker.Save(ctx, key, cp); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("table", r.table).Msg("Failed to save progress")
			}

			logging.Ctx(ctx).Info().
				Str("table", r.table).
				Int64("last_id", res.LastID).
				Int64("processed", res.Read).
				Int64("total_records", res.Total).
				Int64("inserted", res.Inserted).
				Msg("Import progress")
		}
	}
}

// insertBatch inserts rows as one batch, falling back to single-row inserts
// when the batch fails. It returns the inserted and failed counts.
func insertBatch[R any](ctx context.Context, table string, rows []R, insert func([]R) (int, error)) (inserted, failed int) {
	n, err := insert(rows)
	if err == nil {
		return n, 0
	}

	logging.Ctx(ctx).Warn().Err(err).Str("table", table).Int("rows", len(rows)).Msg("Batch insert failed, inserting rows one by one")
	for j := range rows {
		n, err := insert(rows[j : j+1])
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("table", table).Msg("Inserting failed")
			failed++
			continue
		}
		inserted += n
	}
	return inserted, failed
}
