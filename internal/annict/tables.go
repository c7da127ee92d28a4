// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package annict

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/tomtom215/island/internal/database"
	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/models"
	"github.com/tomtom215/island/internal/validation"
)

// Store is the persistence the fetcher writes to. *database.DB implements it.
type Store interface {
	InsertWorks(ctx context.Context, rows []models.WorkRow) (int, error)
	InsertReviews(ctx context.Context, rows []models.ReviewRow) (int, error)
	InsertRecords(ctx context.Context, rows []models.RecordRow) (int, error)
	InsertStaffs(ctx context.Context, rows []models.StaffRow) (int, error)
	Count(ctx context.Context, table string) (int64, error)
}

// ingestResult counts the outcome of one page of items.
type ingestResult struct {
	Inserted int
	Existing int
	Skipped  int
}

// Table describes one Annict list endpoint and how its items are stored.
type Table struct {
	// Name is both the database table and the response key holding the items.
	Name string

	// Path is the endpoint path, e.g. /v1/works.
	Path string

	// Params are the fixed query parameters (fields, sort, filters).
	Params url.Values

	ingest func(ctx context.Context, s Store, items []json.RawMessage) ingestResult
}

// query returns the parameters of one page request.
func (t *Table) query(page, perPage int) url.Values {
	q := url.Values{}
	for k, v := range t.Params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", fmt.Sprint(page))
	q.Set("per_page", fmt.Sprint(perPage))
	return q
}

var tables = map[string]*Table{
	database.TableWorks: newTable(database.TableWorks, "/v1/works",
		url.Values{"fields": {"id,title,images"}},
		(*models.Work).Row, Store.InsertWorks),
	database.TableReviews: newTable(database.TableReviews, "/v1/reviews",
		url.Values{"fields": {"id,work.id,user.id,rating_overall_state"}},
		(*models.Review).Row, Store.InsertReviews),
	database.TableRecords: newTable(database.TableRecords, "/v1/records",
		url.Values{"fields": {"id,work.id,user.id,rating_state"}, "filter_has_record_comment": {"true"}},
		(*models.Record).Row, Store.InsertRecords),
	database.TableStaffs: newTable(database.TableStaffs, "/v1/staffs",
		url.Values{"fields": {"id,name,work.id"}},
		(*models.Staff).Row, Store.InsertStaffs),
}

// LookupTable returns the descriptor of a table by name.
func LookupTable(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownTable, name)
	}
	return t, nil
}

// newTable binds an API item type T and its row type R to an endpoint.
// Items are sorted newest first so a crawl can stop once it reaches rows
// that are already stored.
func newTable[T any, R any](name, path string, params url.Values, toRow func(*T) R,
	insert func(Store, context.Context, []R) (int, error)) *Table {
	params.Set("sort_id", "desc")
	return &Table{
		Name:   name,
		Path:   path,
		Params: params,
		ingest: func(ctx context.Context, s Store, items []json.RawMessage) ingestResult {
			var res ingestResult
			rows := make([]R, 0, len(items))
			for _, raw := range items {
				item := new(T)
				if err := json.Unmarshal(raw, item); err != nil {
					logging.Ctx(ctx).Warn().Err(err).Str("table", name).Msg("Skipping undecodable item")
					res.Skipped++
					continue
				}
				if err := validation.ValidateStruct(item); err != nil {
					logging.Ctx(ctx).Warn().Err(err).Str("table", name).RawJSON("item", raw).Msg("Skipping invalid item")
					res.Skipped++
					continue
				}
				rows = append(rows, toRow(item))
			}
			insertRows(ctx, name, rows, func(batch []R) (int, error) { return insert(s, ctx, batch) }, &res)
			return res
		},
	}
}

// insertRows stores rows as one batch. When the batch fails each row is
// retried alone so a single bad row only skips itself.
func insertRows[R any](ctx context.Context, table string, rows []R, insert func([]R) (int, error), res *ingestResult) {
	if len(rows) == 0 {
		return
	}

	n, err := insert(rows)
	if err == nil {
		res.Inserted += n
		res.Existing += len(rows) - n
		return
	}

	logging.Ctx(ctx).Warn().Err(err).Str("table", table).Int("rows", len(rows)).Msg("Batch insert failed, inserting rows one by one")
	for i := range rows {
		n, err := insert(rows[i : i+1])
		switch {
		case err != nil:
			logging.Ctx(ctx).Warn().Err(err).Str("table", table).Msg("Inserting failed")
			res.Skipped++
		case n == 0:
			res.Existing++
		default:
			res.Inserted++
		}
	}
}
