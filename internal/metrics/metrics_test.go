// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
	}{
		{name: "successful insert", operation: "insert", table: "staffs"},
		{name: "failed count", operation: "count", table: "works", err: errors.New("connection refused")},
		{
			name:      "long error is truncated",
			operation: "select",
			table:     "reviews",
			err:       errors.New(strings.Repeat("x", 120)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(DBQueryErrors)
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			after := testutil.CollectAndCount(DBQueryErrors)

			if tt.err == nil && after != before {
				t.Errorf("error series changed on success: %d -> %d", before, after)
			}
			if tt.err != nil && after < before {
				t.Errorf("error series shrank: %d -> %d", before, after)
			}
		})
	}
}

func TestRecordFetchPage(t *testing.T) {
	before := testutil.ToFloat64(FetchRows.WithLabelValues("test_table", "inserted"))
	pagesBefore := testutil.ToFloat64(FetchPages.WithLabelValues("test_table"))

	RecordFetchPage("test_table", 7, 2, 1)

	if got := testutil.ToFloat64(FetchRows.WithLabelValues("test_table", "inserted")) - before; got != 7 {
		t.Errorf("inserted delta = %v, want 7", got)
	}
	if got := testutil.ToFloat64(FetchPages.WithLabelValues("test_table")) - pagesBefore; got != 1 {
		t.Errorf("pages delta = %v, want 1", got)
	}
}

func TestRecordFetch_SetsLastSuccessOnlyOnSuccess(t *testing.T) {
	FetchLastSuccess.WithLabelValues("fetch_test").Set(0)

	RecordFetch("fetch_test", time.Second, errors.New("boom"))
	if got := testutil.ToFloat64(FetchLastSuccess.WithLabelValues("fetch_test")); got != 0 {
		t.Errorf("last success after failure = %v, want 0", got)
	}

	RecordFetch("fetch_test", time.Second, nil)
	if got := testutil.ToFloat64(FetchLastSuccess.WithLabelValues("fetch_test")); got <= 0 {
		t.Errorf("last success after success = %v, want > 0", got)
	}
}

func TestRecordGraphBuild(t *testing.T) {
	RecordGraphBuild(10, 4, 37, 20*time.Millisecond)

	if got := testutil.ToFloat64(GraphWorks); got != 10 {
		t.Errorf("GraphWorks = %v, want 10", got)
	}
	if got := testutil.ToFloat64(GraphStaff); got != 4 {
		t.Errorf("GraphStaff = %v, want 4", got)
	}
	if got := testutil.ToFloat64(GraphEdges); got != 37 {
		t.Errorf("GraphEdges = %v, want 37", got)
	}
}

func TestRecordSimilarQuery(t *testing.T) {
	hitBefore := testutil.ToFloat64(SimilarQueries.WithLabelValues("diffusion", "hit"))
	missBefore := testutil.ToFloat64(SimilarQueries.WithLabelValues("diffusion", "miss"))

	RecordSimilarQuery("diffusion", true, time.Millisecond)
	RecordSimilarQuery("diffusion", false, time.Millisecond)
	RecordSimilarQuery("diffusion", false, time.Millisecond)

	if got := testutil.ToFloat64(SimilarQueries.WithLabelValues("diffusion", "hit")) - hitBefore; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SimilarQueries.WithLabelValues("diffusion", "miss")) - missBefore; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

func TestWriteTextfileFrom(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "island_test_counter_total",
		Help: "test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	path := filepath.Join(t.TempDir(), "nested", "island.prom")
	if err := WriteTextfileFrom(reg, path); err != nil {
		t.Fatalf("WriteTextfileFrom() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "island_test_counter_total 3") {
		t.Errorf("textfile missing counter sample:\n%s", data)
	}
}

func TestWriteTextfile_EmptyPath(t *testing.T) {
	t.Parallel()

	if err := WriteTextfile("  "); err == nil {
		t.Error("WriteTextfile(empty) error = nil, want error")
	}
}
