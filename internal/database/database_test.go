// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/models"
	"github.com/tomtom215/island/internal/recommend"
)

// testDBSemaphore serializes DuckDB instances across parallel tests to keep
// CGO memory use bounded.
var testDBSemaphore = make(chan struct{}, 2)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestNewCreatesTables(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	for _, table := range Tables {
		n, err := db.Count(ctx, table)
		if err != nil {
			t.Fatalf("Count(%s) error = %v", table, err)
		}
		if n != 0 {
			t.Errorf("Count(%s) = %d, want 0", table, n)
		}
	}
}

func TestNewFileDatabase(t *testing.T) {
	t.Parallel()

	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "island.duckdb")
	cfg := &config.DatabaseConfig{Path: path, Threads: 1}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	if _, err := db.InsertWork(ctx, &models.WorkRow{ID: 1, Title: "persisted"}); err != nil {
		t.Fatalf("InsertWork() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err = New(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	n, err := db.Count(ctx, TableWorks)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count(works) after reopen = %d, want 1", n)
	}
}

func TestInsertIgnoresExistingIDs(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		table  string
		insert func() (bool, error)
	}{
		{"work", TableWorks, func() (bool, error) {
			return db.InsertWork(ctx, &models.WorkRow{ID: 10, Title: "Haibane Renmei", ImageURL: "https://example.com/h.png"})
		}},
		{"review", TableReviews, func() (bool, error) {
			return db.InsertReview(ctx, &models.ReviewRow{ID: 20, UserID: 1, WorkID: 10, RatingOverallState: "great"})
		}},
		{"record", TableRecords, func() (bool, error) {
			return db.InsertRecord(ctx, &models.RecordRow{ID: 30, UserID: 1, WorkID: 10})
		}},
		{"staff", TableStaffs, func() (bool, error) {
			return db.InsertStaff(ctx, &models.StaffRow{ID: 40, Name: "Abe", WorkID: 10})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.insert()
			if err != nil {
				t.Fatalf("first insert error = %v", err)
			}
			if !ok {
				t.Error("first insert reported no change")
			}

			ok, err = tt.insert()
			if err != nil {
				t.Fatalf("second insert error = %v", err)
			}
			if ok {
				t.Error("second insert of the same id reported a change")
			}

			n, err := db.Count(ctx, tt.table)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != 1 {
				t.Errorf("Count(%s) = %d, want 1", tt.table, n)
			}
		})
	}
}

func TestInsertStaffsBatch(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	rows := []models.StaffRow{
		{ID: 1, Name: "A", WorkID: 100},
		{ID: 2, Name: "B", WorkID: 100},
		{ID: 3, Name: "A", WorkID: 200, FetchedAt: time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	n, err := db.InsertStaffs(ctx, rows)
	if err != nil {
		t.Fatalf("InsertStaffs() error = %v", err)
	}
	if n != 3 {
		t.Errorf("InsertStaffs() = %d, want 3", n)
	}

	// Overlapping batch: only id 4 is new.
	n, err = db.InsertStaffs(ctx, []models.StaffRow{rows[0], {ID: 4, Name: "C", WorkID: 200}})
	if err != nil {
		t.Fatalf("InsertStaffs() error = %v", err)
	}
	if n != 1 {
		t.Errorf("InsertStaffs() overlapping = %d, want 1", n)
	}

	n, err = db.InsertStaffs(ctx, nil)
	if err != nil || n != 0 {
		t.Errorf("InsertStaffs(nil) = %d, %v; want 0, nil", n, err)
	}

	var dt time.Time
	if err := db.Conn().QueryRowContext(ctx, `SELECT dt FROM staffs WHERE id = 3`).Scan(&dt); err != nil {
		t.Fatalf("scan dt: %v", err)
	}
	if !dt.Equal(rows[2].FetchedAt) {
		t.Errorf("dt = %v, want %v", dt, rows[2].FetchedAt)
	}
}

func TestStaffCredits(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	rows := []models.StaffRow{
		{ID: 3, Name: "C", WorkID: 2},
		{ID: 1, Name: "A、B", WorkID: 1},
		{ID: 2, Name: "A", WorkID: 2},
	}
	if _, err := db.InsertStaffs(ctx, rows); err != nil {
		t.Fatalf("InsertStaffs() error = %v", err)
	}

	var src recommend.StaffSource = db
	credits, err := src.StaffCredits(ctx)
	if err != nil {
		t.Fatalf("StaffCredits() error = %v", err)
	}

	want := []recommend.StaffCredit{
		{Work: 1, Names: "A、B"},
		{Work: 2, Names: "A"},
		{Work: 2, Names: "C"},
	}
	if len(credits) != len(want) {
		t.Fatalf("StaffCredits() = %v, want %v", credits, want)
	}
	for i := range want {
		if credits[i] != want[i] {
			t.Errorf("credits[%d] = %+v, want %+v", i, credits[i], want[i])
		}
	}
}

func TestWorkTitles(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	rows := []models.WorkRow{
		{ID: 1, Title: "One"},
		{ID: 2, Title: "Two"},
		{ID: 3},
	}
	if _, err := db.InsertWorks(ctx, rows); err != nil {
		t.Fatalf("InsertWorks() error = %v", err)
	}

	titles, err := db.WorkTitles(ctx, []recommend.WorkID{1, 2, 3, 99})
	if err != nil {
		t.Fatalf("WorkTitles() error = %v", err)
	}
	if len(titles) != 2 || titles[1] != "One" || titles[2] != "Two" {
		t.Errorf("WorkTitles() = %v, want {1:One 2:Two}", titles)
	}

	empty, err := db.WorkTitles(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("WorkTitles(nil) = %v, %v", empty, err)
	}
}

func TestWorkTitlesChunks(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	n := titleChunkSize + 10
	rows := make([]models.WorkRow, n)
	ids := make([]recommend.WorkID, n)
	for i := range rows {
		rows[i] = models.WorkRow{ID: int64(i + 1), Title: "t"}
		ids[i] = recommend.WorkID(i + 1)
	}
	if _, err := db.InsertWorks(ctx, rows); err != nil {
		t.Fatalf("InsertWorks() error = %v", err)
	}

	titles, err := db.WorkTitles(ctx, ids)
	if err != nil {
		t.Fatalf("WorkTitles() error = %v", err)
	}
	if len(titles) != n {
		t.Errorf("len(WorkTitles()) = %d, want %d", len(titles), n)
	}
}

func TestWorkImage(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertWorks(ctx, []models.WorkRow{
		{ID: 1, Title: "With", ImageURL: "https://example.com/1.png"},
		{ID: 2, Title: "Without"},
	}); err != nil {
		t.Fatalf("InsertWorks() error = %v", err)
	}

	tests := []struct {
		id     recommend.WorkID
		wantOK bool
		want   string
	}{
		{1, true, "https://example.com/1.png"},
		{2, false, ""},
		{3, false, ""},
	}
	for _, tt := range tests {
		url, ok, err := db.WorkImage(ctx, tt.id)
		if err != nil {
			t.Fatalf("WorkImage(%d) error = %v", tt.id, err)
		}
		if ok != tt.wantOK || url != tt.want {
			t.Errorf("WorkImage(%d) = %q, %v; want %q, %v", tt.id, url, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCountUnknownTable(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	_, err := db.Count(context.Background(), "users; DROP TABLE works")
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("Count() error = %v, want ErrUnknownTable", err)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertReviews(ctx, []models.ReviewRow{{ID: 1, UserID: 1, WorkID: 1}, {ID: 2, UserID: 2, WorkID: 1}}); err != nil {
		t.Fatalf("InsertReviews() error = %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts[TableReviews] != 2 || counts[TableWorks] != 0 {
		t.Errorf("Counts() = %v", counts)
	}
	if len(counts) != len(Tables) {
		t.Errorf("Counts() has %d tables, want %d", len(counts), len(Tables))
	}
}

func TestConcurrentInserts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				// Goroutines overlap on ids so some inserts are ignored.
				id := int64((g%4)*10 + i)
				if _, err := db.InsertStaff(ctx, &models.StaffRow{ID: id, Name: "N", WorkID: 1}); err != nil {
					errs <- err
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		// DuckDB reports write-write conflicts on the same key; they are
		// acceptable here as long as the final state is consistent.
		if !isTransactionConflict(err) {
			t.Errorf("concurrent insert error = %v", err)
		}
	}

	n, err := db.Count(ctx, TableStaffs)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n > 40 || n == 0 {
		t.Errorf("Count(staffs) = %d, want 1..40", n)
	}
}

func TestConnectionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "with memory limit",
			cfg:  config.DatabaseConfig{Path: "a.duckdb", MaxMemory: "1GB"},
			want: "a.duckdb?access_mode=read_write&threads=2&autoinstall_known_extensions=false&autoload_known_extensions=false&max_memory=1GB",
		},
		{
			name: "without memory limit",
			cfg:  config.DatabaseConfig{Path: ":memory:"},
			want: ":memory:?access_mode=read_write&threads=2&autoinstall_known_extensions=false&autoload_known_extensions=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := connectionString(&tt.cfg, 2); got != tt.want {
				t.Errorf("connectionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTransactionConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("TransactionContext Error: Failed to commit: Transaction conflict"), true},
		{errors.New("Conflict on update!"), true},
		{errors.New("Constraint Error: duplicate key"), false},
	}
	for _, tt := range tests {
		if got := isTransactionConflict(tt.err); got != tt.want {
			t.Errorf("isTransactionConflict(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
