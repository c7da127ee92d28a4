// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/island/internal/logging"
)

// keyPrefix namespaces checkpoint keys inside the Badger keyspace.
const keyPrefix = "progress:"

// BadgerTracker is a Tracker backed by BadgerDB.
type BadgerTracker struct {
	db *badger.DB
}

// Open opens (or creates) a BadgerTracker at path.
func Open(path string) (*BadgerTracker, error) {
	if path == "" {
		return nil, errors.New("progress path is required")
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	// Checkpoints are tiny; keep the footprint small.
	opts.MemTableSize = 8 << 20
	opts.ValueLogFileSize = 16 << 20
	opts.NumCompactors = 2

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Debug().Str("path", path).Msg("Progress store opened")
	return &BadgerTracker{db: db}, nil
}

// OpenInMemory opens a BadgerTracker that never touches disk.
func OpenInMemory() (*BadgerTracker, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory BadgerDB: %w", err)
	}
	return &BadgerTracker{db: db}, nil
}

// Save implements Tracker.
func (b *BadgerTracker) Save(ctx context.Context, key string, cp *Checkpoint) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	stored := *cp
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(keyPrefix+key), data))
	})
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", key, err)
	}
	return nil
}

// Load implements Tracker.
func (b *BadgerTracker) Load(ctx context.Context, key string) (*Checkpoint, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, err
	}

	var cp *Checkpoint
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cp = &Checkpoint{}
			return json.Unmarshal(val, cp)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", key, err)
	}
	return cp, nil
}

// Clear implements Tracker.
func (b *BadgerTracker) Clear(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyPrefix + key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear checkpoint %s: %w", key, err)
	}
	return nil
}

// List implements Tracker.
func (b *BadgerTracker) List(ctx context.Context) (map[string]*Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]*Checkpoint)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := strings.TrimPrefix(string(item.Key()), keyPrefix)
			cp := &Checkpoint{}
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, cp)
			}); err != nil {
				return fmt.Errorf("decode checkpoint %s: %w", key, err)
			}
			out[key] = cp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close implements Tracker.
func (b *BadgerTracker) Close() error {
	return b.db.Close()
}
