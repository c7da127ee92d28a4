// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/island/internal/annict"
	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/database"
	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/progress"
	"github.com/tomtom215/island/internal/recommend"
	"github.com/tomtom215/island/internal/recommend/algorithms"
)

// openDatabase opens the DuckDB store. The caller must Close it.
func openDatabase(c *config.Config) (*database.DB, error) {
	db, err := database.New(&c.Database)
	if err != nil {
		return nil, dataError(fmt.Errorf("open database: %w", err))
	}
	return db, nil
}

// openTracker opens the Badger checkpoint store, or an in-memory tracker
// when progress tracking is disabled. The caller must Close it.
func openTracker(c *config.Config) (progress.Tracker, error) {
	if !c.Progress.Enabled {
		return progress.NewMemoryTracker(), nil
	}
	t, err := progress.Open(c.Progress.Path)
	if err != nil {
		return nil, dataError(fmt.Errorf("open progress store: %w", err))
	}
	return t, nil
}

// closeWithLog closes a resource and logs any error at warn level.
func closeWithLog(closer interface{ Close() error }, resourceType string) {
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// newFetcher builds an authenticated Annict fetcher over db.
func newFetcher(c *config.Config, db *database.DB, tracker progress.Tracker) (*annict.Fetcher, error) {
	if err := c.RequireToken(); err != nil {
		return nil, configError(err)
	}
	client := annict.NewClient(&c.Annict)
	return annict.NewFetcher(client, db, tracker, c.Annict.PerPage), nil
}

// recommendConfig maps the recommend section onto the model configuration.
func recommendConfig(rc *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		Algorithm:    rc.Algorithm,
		MinStaffFreq: rc.MinStaffFreq,
		Depth:        rc.Depth,
		Margin:       rc.Margin,
		CacheSize:    rc.CacheSize,
		RandomWalk: recommend.RandomWalkConfig{
			WalksPerResult:     rc.WalksPerResult,
			Steps:              rc.WalkSteps,
			RestartProbability: rc.RestartProbability,
		},
		Seed: rc.Seed,
	}
}

// buildModel loads every staff credit from db and builds the model.
func buildModel(ctx context.Context, db *database.DB, rc *recommend.Config) (*recommend.Model, error) {
	if err := rc.Validate(); err != nil {
		return nil, configError(err)
	}
	ranker, err := algorithms.New(rc)
	if err != nil {
		return nil, configError(err)
	}
	model, err := recommend.NewModelFromSource(ctx, db, ranker, rc, logging.WithComponent("recommend"))
	if err != nil {
		return nil, dataError(err)
	}
	return model, nil
}

// tablesArg resolves a table argument; "all" or empty means every table.
func tablesArg(arg string) ([]string, error) {
	if arg == "" || arg == "all" {
		return append([]string(nil), config.AllTables...), nil
	}
	if !database.ValidTable(arg) {
		return nil, fmt.Errorf("%w: %q (want one of works, reviews, records, staffs, all)", database.ErrUnknownTable, arg)
	}
	return []string{arg}, nil
}
