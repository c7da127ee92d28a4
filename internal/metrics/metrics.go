// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "island_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Annict API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_annict_requests_total",
			Help: "Total number of Annict API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "island_annict_request_duration_seconds",
			Help:    "Annict API request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	APIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_annict_retries_total",
			Help: "Total number of retried Annict API requests",
		},
		[]string{"endpoint", "reason"}, // reason: "transport", "server", "decode", "rate_limited"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "island_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Fetch Metrics
	FetchPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_fetch_pages_total",
			Help: "Total number of API pages fetched",
		},
		[]string{"table"},
	)

	FetchRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_fetch_rows_total",
			Help: "Rows seen while fetching, by outcome",
		},
		[]string{"table", "outcome"}, // outcome: "inserted", "existing", "skipped"
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "island_fetch_duration_seconds",
			Help:    "Duration of a complete table fetch in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"table"},
	)

	FetchLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "island_fetch_last_success_timestamp",
			Help: "Unix timestamp of the last successful fetch",
		},
		[]string{"table"},
	)

	// Legacy Import Metrics
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_import_rows_total",
			Help: "Rows read from legacy dataset files, by outcome",
		},
		[]string{"table", "outcome"}, // outcome: "inserted", "existing", "failed"
	)

	// Staff Graph Metrics
	GraphWorks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "island_graph_works",
			Help: "Number of works in the staff graph",
		},
	)

	GraphStaff = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "island_graph_staff",
			Help: "Number of staff members kept after the frequency filter",
		},
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "island_graph_adjacency_entries",
			Help: "Total length of all adjacency lists",
		},
	)

	GraphBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "island_graph_build_duration_seconds",
			Help:    "Time to build the staff graph from credits",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Similar Items Metrics
	SimilarQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "island_similar_queries_total",
			Help: "Total number of similar-items queries",
		},
		[]string{"algorithm", "cache"}, // cache: "hit", "miss"
	)

	SimilarQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "island_similar_query_duration_seconds",
			Help:    "Latency of similar-items queries in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"algorithm"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an Annict API request
func RecordAPIRequest(endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAPIRetry records a retried Annict API request
func RecordAPIRetry(endpoint, reason string) {
	APIRetries.WithLabelValues(endpoint, reason).Inc()
}

// RecordFetch records the outcome of a complete table fetch
func RecordFetch(table string, duration time.Duration, err error) {
	FetchDuration.WithLabelValues(table).Observe(duration.Seconds())
	if err == nil {
		FetchLastSuccess.WithLabelValues(table).Set(float64(time.Now().Unix()))
	}
}

// RecordFetchPage records one fetched page and the outcome of its rows
func RecordFetchPage(table string, inserted, existing, skipped int) {
	FetchPages.WithLabelValues(table).Inc()
	FetchRows.WithLabelValues(table, "inserted").Add(float64(inserted))
	FetchRows.WithLabelValues(table, "existing").Add(float64(existing))
	FetchRows.WithLabelValues(table, "skipped").Add(float64(skipped))
}

// RecordImportBatch records one legacy import batch
func RecordImportBatch(table string, inserted, existing, failed int) {
	ImportRows.WithLabelValues(table, "inserted").Add(float64(inserted))
	ImportRows.WithLabelValues(table, "existing").Add(float64(existing))
	ImportRows.WithLabelValues(table, "failed").Add(float64(failed))
}

// RecordGraphBuild records the size of a freshly built staff graph
func RecordGraphBuild(works, staff, adjacency int, duration time.Duration) {
	GraphWorks.Set(float64(works))
	GraphStaff.Set(float64(staff))
	GraphEdges.Set(float64(adjacency))
	GraphBuildDuration.Observe(duration.Seconds())
}

// RecordSimilarQuery records a similar-items query
func RecordSimilarQuery(algorithm string, cacheHit bool, duration time.Duration) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	SimilarQueries.WithLabelValues(algorithm, cache).Inc()
	SimilarQueryDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by node_exporter's textfile collector.
// The file is written atomically through a temporary file.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(prometheus.DefaultGatherer, path)
}

// WriteTextfileFrom is WriteTextfile with an explicit gatherer.
func WriteTextfileFrom(g prometheus.Gatherer, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("metrics textfile path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
