// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package progress

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// trackerFactories builds each Tracker implementation for the shared contract tests.
var trackerFactories = map[string]func(t *testing.T) Tracker{
	"memory": func(*testing.T) Tracker { return NewMemoryTracker() },
	"badger_memory": func(t *testing.T) Tracker {
		tr, err := OpenInMemory()
		if err != nil {
			t.Fatalf("OpenInMemory() error = %v", err)
		}
		return tr
	},
	"badger_disk": func(t *testing.T) Tracker {
		tr, err := Open(t.TempDir())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		return tr
	},
}

func TestTrackerContract(t *testing.T) {
	t.Parallel()

	for name, factory := range trackerFactories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := factory(t)
			defer tr.Close()
			ctx := context.Background()

			cp, err := tr.Load(ctx, FetchKey("works"))
			if err != nil {
				t.Fatalf("Load() missing error = %v", err)
			}
			if cp != nil {
				t.Fatalf("Load() missing = %+v, want nil", cp)
			}

			saved := &Checkpoint{
				Table:     "works",
				Page:      7,
				Fetched:   350,
				Inserted:  120,
				RunID:     "abcd1234",
				UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}
			if err := tr.Save(ctx, FetchKey("works"), saved); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := tr.Load(ctx, FetchKey("works"))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got == nil || !got.UpdatedAt.Equal(saved.UpdatedAt) {
				t.Fatalf("Load() = %+v, want %+v", got, saved)
			}
			got.UpdatedAt = saved.UpdatedAt
			if !reflect.DeepEqual(got, saved) {
				t.Errorf("Load() = %+v, want %+v", got, saved)
			}

			// Mutating the loaded value must not change the stored one.
			got.Page = 99
			again, _ := tr.Load(ctx, FetchKey("works"))
			if again.Page != 7 {
				t.Errorf("stored Page = %d after mutating loaded copy, want 7", again.Page)
			}

			if err := tr.Save(ctx, ImportKey("staffs"), &Checkpoint{Table: "staffs", LastID: 500}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			all, err := tr.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if keys := SortedKeys(all); !reflect.DeepEqual(keys, []string{"fetch/works", "import/staffs"}) {
				t.Errorf("List() keys = %v", keys)
			}
			if all["import/staffs"].UpdatedAt.IsZero() {
				t.Error("Save() did not stamp UpdatedAt")
			}

			if err := tr.Clear(ctx, FetchKey("works")); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if cp, _ := tr.Load(ctx, FetchKey("works")); cp != nil {
				t.Errorf("Load() after Clear = %+v, want nil", cp)
			}
			if err := tr.Clear(ctx, FetchKey("never-saved")); err != nil {
				t.Errorf("Clear() missing key error = %v", err)
			}
		})
	}
}

func TestTrackerEmptyKey(t *testing.T) {
	t.Parallel()

	for name, factory := range trackerFactories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := factory(t)
			defer tr.Close()
			ctx := context.Background()

			if err := tr.Save(ctx, "", &Checkpoint{}); !errors.Is(err, ErrEmptyKey) {
				t.Errorf("Save(\"\") error = %v, want ErrEmptyKey", err)
			}
			if _, err := tr.Load(ctx, ""); !errors.Is(err, ErrEmptyKey) {
				t.Errorf("Load(\"\") error = %v, want ErrEmptyKey", err)
			}
			if err := tr.Clear(ctx, ""); !errors.Is(err, ErrEmptyKey) {
				t.Errorf("Clear(\"\") error = %v, want ErrEmptyKey", err)
			}
		})
	}
}

func TestTrackerCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewMemoryTracker()
	if err := tr.Save(ctx, "k", &Checkpoint{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	if _, err := tr.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}

func TestBadgerTrackerPersists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	tr, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := tr.Save(ctx, FetchKey("records"), &Checkpoint{Table: "records", Page: 12}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	tr, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer tr.Close()

	cp, err := tr.Load(ctx, FetchKey("records"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cp == nil || cp.Page != 12 {
		t.Errorf("Load() after reopen = %+v, want Page 12", cp)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}
