// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package legacyimport copies the original per-table SQLite datasets into the
DuckDB store.

Earlier crawls kept one SQLite file per table under the dataset directory:

	dataset/works.db    works(id, title, image_url, dt)
	dataset/reviews.db  reviews(id, user_id, work_id, rating_overall_state, dt)
	dataset/records.db  records(id, user_id, work_id, rating_state, dt)
	dataset/staffs.db   staffs(id, name, work_id, dt)

Files are opened read-only with the pure-Go modernc.org/sqlite driver and
read in id order with keyset pagination:

	SELECT ... FROM staffs WHERE id > ? ORDER BY id ASC LIMIT ?

After each batch the last imported id is saved to the progress tracker under
progress.ImportKey(table), so an interrupted import continues where it
stopped and a repeated import only copies rows added since. Inserts are
insert-or-ignore, so overlapping runs never duplicate rows.

A missing file is logged and skipped. A failing batch is retried row by row
so one bad row does not lose the rest of the batch.

Usage:

	imp := legacyimport.NewImporter(&cfg.Import, db, tracker)
	results, err := imp.Import(ctx, legacyimport.Options{})
*/
package legacyimport
