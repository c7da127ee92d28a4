// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package database stores the Annict dataset in DuckDB.

Four tables mirror the crawler's datasets: works, reviews, records and
staffs. Each is keyed by the Annict id and written with INSERT OR IGNORE,
so re-fetching a page never duplicates rows and the insert count tells the
fetcher when it has caught up with previously stored data.

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ok, err := db.InsertStaff(ctx, &models.StaffRow{ID: 1, Name: "A、B", WorkID: 42})

DB implements recommend.StaffSource, which is how the staff graph is built
from the staffs table.
*/
package database
