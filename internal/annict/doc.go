// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package annict crawls the Annict REST API into the local store.

# Client

Client performs authenticated GET requests against api.annict.com:

  - access_token is appended to every request and redacted from errors
  - a token bucket limiter (golang.org/x/time/rate) paces requests
  - a gobreaker circuit breaker stops hammering a failing API; client
    errors (4xx) do not count as failures
  - transport errors, 5xx responses and undecodable bodies are retried up
    to retry_attempts times with retry_delay between attempts
  - 429 responses honour Retry-After, otherwise back off exponentially

# Fetcher

Fetcher pages through one list endpoint, newest ids first (sort_id=desc),
and stores each page with insert-or-ignore semantics. A crawl stops at the
first empty page, or at the first page that inserted nothing because the
rest is already stored. Force keeps going past stored pages.

Every page is checkpointed to a progress.Tracker so an interrupted crawl
can continue with Resume:

	fetcher := annict.NewFetcher(client, db, tracker, cfg.Annict.PerPage)
	res, err := fetcher.Fetch(ctx, "staffs", annict.FetchOptions{Resume: true})

Items that fail to decode or validate are logged and skipped.
*/
package annict
