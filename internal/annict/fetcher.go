// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package annict

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/metrics"
	"github.com/tomtom215/island/internal/progress"
)

// Stop reasons reported in FetchResult.
const (
	StopEmptyPage = "empty_page" // the API returned no items
	StopCaughtUp  = "caught_up"  // a page inserted nothing new
	StopMaxPages  = "max_pages"  // FetchOptions.MaxPages reached
)

// Getter performs one decoded GET request. *Client implements it.
type Getter interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
}

// FetchOptions controls a single table fetch.
type FetchOptions struct {
	// FromPage is the first page to request. Values below 1 mean 1.
	FromPage int

	// Force keeps paging after a page that inserted nothing.
	Force bool

	// Resume starts after the last checkpointed page of an unfinished run.
	Resume bool

	// MaxPages stops after this many pages. Zero means no limit.
	MaxPages int
}

// FetchResult summarizes a table fetch.
type FetchResult struct {
	Table      string        `json:"table"`
	StartPage  int           `json:"start_page"`
	LastPage   int           `json:"last_page"`
	Pages      int           `json:"pages"`
	Fetched    int           `json:"fetched"`
	Inserted   int           `json:"inserted"`
	Existing   int           `json:"existing"`
	Skipped    int           `json:"skipped"`
	TotalRows  int64         `json:"total_rows"`
	StopReason string        `json:"stop_reason"`
	Duration   time.Duration `json:"duration_ns"`
}

// Fetcher crawls Annict list endpoints into a Store.
type Fetcher struct {
	client  Getter
	store   Store
	tracker progress.Tracker
	perPage int
}

// NewFetcher creates a Fetcher. A nil tracker disables checkpoints.
func NewFetcher(client Getter, store Store, tracker progress.Tracker, perPage int) *Fetcher {
	if tracker == nil {
		tracker = progress.NewMemoryTracker()
	}
	if perPage <= 0 {
		perPage = 50
	}
	return &Fetcher{client: client, store: store, tracker: tracker, perPage: perPage}
}

// Fetch pages through table starting at opts.FromPage, newest items first.
// It stops at the first empty page, or at the first page that inserted
// nothing unless opts.Force is set. Every completed page is checkpointed so
// an interrupted run can continue with opts.Resume. On error the partial
// result is returned together with the error.
func (f *Fetcher) Fetch(ctx context.Context, table string, opts FetchOptions) (result *FetchResult, err error) {
	t, err := LookupTable(table)
	if err != nil {
		return nil, err
	}

	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	log := logging.Ctx(ctx).With().Str("table", table).Logger()

	start := time.Now()
	defer func() {
		metrics.RecordFetch(table, time.Since(start), err)
	}()

	key := progress.FetchKey(table)
	startPage, cp, err := f.startPage(ctx, table, opts)
	if err != nil {
		return nil, err
	}

	result = &FetchResult{Table: table, StartPage: startPage}
	log.Info().Int("from_page", startPage).Bool("force", opts.Force).Bool("resume", opts.Resume).Msg("Fetch started")

	for page := startPage; ; page++ {
		if opts.MaxPages > 0 && result.Pages >= opts.MaxPages {
			result.StopReason = StopMaxPages
			break
		}

		items, err := f.fetchPage(ctx, t, page)
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("fetch %s page %d: %w", table, page, err)
		}
		log.Debug().Int("page", page).Int("items", len(items)).Msg("Page fetched")

		if len(items) == 0 {
			log.Info().Int("page", page).Msg("No more data to fetch")
			result.StopReason = StopEmptyPage
			break
		}

		res := t.ingest(ctx, f.store, items)
		metrics.RecordFetchPage(table, res.Inserted, res.Existing, res.Skipped)

		result.Pages++
		result.LastPage = page
		result.Fetched += len(items)
		result.Inserted += res.Inserted
		result.Existing += res.Existing
		result.Skipped += res.Skipped

		cp.Page = page
		cp.Fetched += int64(len(items))
		cp.Inserted += int64(res.Inserted)
		cp.UpdatedAt = time.Now().UTC()
		if err := f.tracker.Save(ctx, key, cp); err != nil {
			log.Warn().Err(err).Int("page", page).Msg("Failed to save checkpoint")
		}

		log.Info().Int("page", page).Int("items", len(items)).Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("Page stored")

		if !opts.Force && res.Inserted == 0 {
			log.Info().Int("page", page).Msg("No more data to insert")
			result.StopReason = StopCaughtUp
			break
		}
	}

	if result.StopReason != StopMaxPages {
		cp.Done = true
		cp.UpdatedAt = time.Now().UTC()
		if err := f.tracker.Save(ctx, key, cp); err != nil {
			log.Warn().Err(err).Msg("Failed to save final checkpoint")
		}
	}

	result.Duration = time.Since(start)
	if total, err := f.store.Count(ctx, table); err == nil {
		result.TotalRows = total
	} else {
		log.Warn().Err(err).Msg("Failed to count rows")
	}

	log.Info().
		Int("pages", result.Pages).
		Int("inserted", result.Inserted).
		Int64("total_rows", result.TotalRows).
		Str("stop_reason", result.StopReason).
		Dur("duration", result.Duration).
		Msg("Fetch finished")
	return result, nil
}

// FetchAll fetches tables in order and stops at the first error.
func (f *Fetcher) FetchAll(ctx context.Context, tables []string, opts FetchOptions) ([]*FetchResult, error) {
	results := make([]*FetchResult, 0, len(tables))
	for _, table := range tables {
		res, err := f.Fetch(ctx, table, opts)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// startPage resolves the first page and the checkpoint the run continues.
func (f *Fetcher) startPage(ctx context.Context, table string, opts FetchOptions) (int, *progress.Checkpoint, error) {
	from := max(opts.FromPage, 1)
	fresh := &progress.Checkpoint{
		Table: table,
		RunID: logging.CorrelationIDFromContext(ctx),
	}
	if !opts.Resume {
		return from, fresh, nil
	}

	cp, err := f.tracker.Load(ctx, progress.FetchKey(table))
	if err != nil {
		return 0, nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if cp == nil || cp.Done {
		return from, fresh, nil
	}
	cp.RunID = fresh.RunID
	return cp.Page + 1, cp, nil
}

// fetchPage returns the raw items of one page. A response without the
// table key counts as an empty page.
func (f *Fetcher) fetchPage(ctx context.Context, t *Table, page int) ([]json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := f.client.Get(ctx, t.Path, t.query(page, f.perPage), &body); err != nil {
		return nil, err
	}

	raw, ok := body[t.Name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s items: %w", t.Name, err)
	}
	return items, nil
}
