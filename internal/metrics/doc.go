// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package metrics provides Prometheus metrics collection and export for Island.

Island has no HTTP surface, so metrics are not scraped from an endpoint.
Instead every command can dump the default registry to a file in the
Prometheus text format (see WriteTextfile), which node_exporter's textfile
collector picks up.

# Available Metrics

Database:
  - island_duckdb_query_duration_seconds{operation,table}
  - island_duckdb_query_errors_total{operation,table,error_type}

Annict API:
  - island_annict_requests_total{endpoint,status_code}
  - island_annict_request_duration_seconds{endpoint}
  - island_annict_retries_total{endpoint,reason}
  - island_circuit_breaker_state{name}
  - island_circuit_breaker_requests_total{name,result}
  - island_circuit_breaker_state_transitions_total{name,from_state,to_state}

Fetch and import:
  - island_fetch_pages_total{table}
  - island_fetch_rows_total{table,outcome}
  - island_fetch_duration_seconds{table}
  - island_fetch_last_success_timestamp{table}
  - island_import_rows_total{table,outcome}

Staff graph and queries:
  - island_graph_works, island_graph_staff, island_graph_adjacency_entries
  - island_graph_build_duration_seconds
  - island_similar_queries_total{algorithm,cache}
  - island_similar_query_duration_seconds{algorithm}

# Usage

	start := time.Now()
	n, err := db.Count(ctx, "staffs")
	metrics.RecordDBQuery("count", "staffs", time.Since(start), err)

	if path := cfg.Metrics.Textfile; path != "" {
	    if err := metrics.WriteTextfile(path); err != nil {
	        logging.Warn().Err(err).Msg("Failed to write metrics")
	    }
	}
*/
package metrics
