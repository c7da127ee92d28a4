// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package progress

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrEmptyKey is returned for operations on an empty key.
var ErrEmptyKey = errors.New("progress key is empty")

// Checkpoint is the resumable state of one fetch or import.
type Checkpoint struct {
	// Table is the dataset table the checkpoint belongs to.
	Table string `json:"table"`

	// Page is the last fully processed API page (fetch only).
	Page int `json:"page,omitempty"`

	// LastID is the highest id imported so far (legacy import only).
	LastID int64 `json:"last_id,omitempty"`

	// Fetched and Inserted are running totals since the checkpoint was created.
	Fetched  int64 `json:"fetched"`
	Inserted int64 `json:"inserted"`

	// Done is set when the run reached the end of its data.
	Done bool `json:"done"`

	// RunID is the correlation ID of the run that wrote the checkpoint.
	RunID string `json:"run_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker stores checkpoints by key.
type Tracker interface {
	// Save stores cp under key, replacing any previous checkpoint.
	Save(ctx context.Context, key string, cp *Checkpoint) error

	// Load returns the checkpoint under key, or nil when there is none.
	Load(ctx context.Context, key string) (*Checkpoint, error)

	// Clear removes the checkpoint under key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error

	// List returns every stored checkpoint keyed by its key.
	List(ctx context.Context) (map[string]*Checkpoint, error)

	// Close releases the underlying storage.
	Close() error
}

// FetchKey returns the checkpoint key of an Annict fetch of table.
func FetchKey(table string) string {
	return "fetch/" + table
}

// ImportKey returns the checkpoint key of a legacy import of table.
func ImportKey(table string) string {
	return "import/" + table
}

// SortedKeys returns the keys of checkpoints in ascending order.
func SortedKeys(checkpoints map[string]*Checkpoint) []string {
	keys := make([]string, 0, len(checkpoints))
	for k := range checkpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryTracker is an in-memory Tracker.
type MemoryTracker struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
}

// NewMemoryTracker returns an empty MemoryTracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{checkpoints: make(map[string]Checkpoint)}
}

// Save implements Tracker.
func (m *MemoryTracker) Save(ctx context.Context, key string, cp *Checkpoint) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	stored := *cp
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[key] = stored
	return nil
}

// Load implements Tracker.
func (m *MemoryTracker) Load(ctx context.Context, key string) (*Checkpoint, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.checkpoints[key]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

// Clear implements Tracker.
func (m *MemoryTracker) Clear(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, key)
	return nil
}

// List implements Tracker.
func (m *MemoryTracker) List(ctx context.Context) (map[string]*Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Checkpoint, len(m.checkpoints))
	for k, cp := range m.checkpoints {
		cp := cp
		out[k] = &cp
	}
	return out, nil
}

// Close implements Tracker.
func (m *MemoryTracker) Close() error {
	return nil
}

func checkKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return ctx.Err()
}
