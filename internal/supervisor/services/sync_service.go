// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/island/internal/annict"
	"github.com/tomtom215/island/internal/logging"
)

// TableFetcher fetches one Annict table. *annict.Fetcher implements it.
type TableFetcher interface {
	Fetch(ctx context.Context, table string, opts annict.FetchOptions) (*annict.FetchResult, error)
}

// SyncConfig controls one table sync service.
type SyncConfig struct {
	Table      string
	Interval   time.Duration
	Force      bool
	RunOnStart bool
}

// SyncService fetches one table on a fixed interval as a supervised service.
//
// Each run resumes an interrupted crawl from its checkpoint and otherwise
// starts from page 1, stopping once it reaches stored rows. A failed run is
// logged and retried on the next tick; the API client already retries
// transient errors, so a failure here usually means the API is down.
type SyncService struct {
	fetcher TableFetcher
	cfg     SyncConfig
	name    string

	// syncMu prevents concurrent runs of the same table.
	syncMu sync.Mutex

	mu          sync.RWMutex
	lastSync    time.Time
	lastResult  *annict.FetchResult
	runs        int
	failures    int
	onCompleted func(*annict.FetchResult)
}

// NewSyncService creates a sync service for cfg.Table.
//
// Example usage:
//
//	fetcher := annict.NewFetcher(client, db, tracker, cfg.Annict.PerPage)
//	svc := services.NewSyncService(fetcher, services.SyncConfig{Table: "staffs", Interval: 6 * time.Hour})
//	tree.AddSyncService(svc)
func NewSyncService(fetcher TableFetcher, cfg SyncConfig) *SyncService {
	return &SyncService{
		fetcher: fetcher,
		cfg:     cfg,
		name:    "sync-" + cfg.Table,
	}
}

// SetOnSyncCompleted sets a callback invoked after each successful run.
func (s *SyncService) SetOnSyncCompleted(callback func(*annict.FetchResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCompleted = callback
}

// Serve implements suture.Service. It blocks until ctx is canceled.
func (s *SyncService) Serve(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		return fmt.Errorf("%s: interval must be positive, got %v", s.name, s.cfg.Interval)
	}

	logging.Info().Str("service", s.name).Dur("interval", s.cfg.Interval).Msg("Starting table sync")

	if s.cfg.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("service", s.name).Msg("Table sync stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncService) runOnce(ctx context.Context) {
	if _, err := s.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Ctx(ctx).Error().Err(err).Str("service", s.name).Msg("Sync failed")
	}
}

func (s *SyncService) run(ctx context.Context) (*annict.FetchResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	res, err := s.fetcher.Fetch(ctx, s.cfg.Table, annict.FetchOptions{
		Force:  s.cfg.Force,
		Resume: true,
	})

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failures++
		s.mu.Unlock()
		return res, err
	}
	s.lastSync = time.Now()
	s.lastResult = res
	callback := s.onCompleted
	s.mu.Unlock()

	if callback != nil {
		callback(res)
	}
	return res, nil
}

// LastSyncTime returns the time of the last successful run.
func (s *SyncService) LastSyncTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// LastResult returns the result of the last successful run, or nil.
func (s *SyncService) LastResult() *annict.FetchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// Stats returns the number of runs and failed runs so far.
func (s *SyncService) Stats() (runs, failures int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs, s.failures
}

// String implements fmt.Stringer. Suture uses it to name the service in logs.
func (s *SyncService) String() string {
	return s.name
}
