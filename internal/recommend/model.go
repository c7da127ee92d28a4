// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/island/internal/cache"
	"github.com/tomtom215/island/internal/metrics"
)

// ErrNoRanker is returned when a model is created without a ranker.
var ErrNoRanker = errors.New("no ranker configured")

// Model answers similar-items queries over a staff graph.
// It is safe for concurrent use.
type Model struct {
	config *Config
	logger zerolog.Logger
	graph  *Graph
	ranker Ranker

	// nil when caching is disabled
	cache *cache.LRU[cacheKey, []ScoredWork]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
}

type cacheKey struct {
	work WorkID
	num  int
}

// NewModel creates a model over an existing graph.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModel(g *Graph, ranker Ranker, cfg *Config, logger zerolog.Logger) (*Model, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if ranker == nil {
		return nil, ErrNoRanker
	}
	if g == nil {
		g = BuildGraph(nil, cfg.MinStaffFreq)
	}

	m := &Model{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Str("algorithm", ranker.Name()).Logger(),
		graph:  g,
		ranker: ranker,
	}
	if cfg.CacheSize > 0 {
		m.cache = cache.NewLRU[cacheKey, []ScoredWork](cfg.CacheSize)
	}
	return m, nil
}

// NewModelFromSource reads every staff credit from src, tokenizes the names
// and builds the graph with cfg.MinStaffFreq.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelFromSource(ctx context.Context, src StaffSource, ranker Ranker, cfg *Config, logger zerolog.Logger) (*Model, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	start := time.Now()
	credits, err := src.StaffCredits(ctx)
	if err != nil {
		return nil, fmt.Errorf("load staff credits: %w", err)
	}

	edges := EdgesFromCredits(credits)
	g := BuildGraph(edges, cfg.MinStaffFreq)
	stats := g.Stats()
	metrics.RecordGraphBuild(stats.Works, stats.Staff, stats.AdjacencyEntries, time.Since(start))

	m, err := NewModel(g, ranker, cfg, logger)
	if err != nil {
		return nil, err
	}

	m.logger.Info().
		Int("credits", len(credits)).
		Int("works", stats.Works).
		Int("staff", stats.Staff).
		Int("dropped_staff", stats.DroppedStaff).
		Int("adjacency_entries", stats.AdjacencyEntries).
		Dur("duration", time.Since(start)).
		Msg("staff graph built")

	return m, nil
}

// SimilarItems returns up to num works related to work, excluding work
// itself, ordered by descending affinity.
//
// Unknown works, isolated works and non-positive num yield an empty result.
func (m *Model) SimilarItems(work WorkID, num int) []ScoredWork {
	m.requestCount.Add(1)
	if num <= 0 || !m.graph.HasWork(work) {
		return []ScoredWork{}
	}

	start := time.Now()
	key := cacheKey{work: work, num: num}
	if m.cache != nil {
		if cached, ok := m.cache.Get(key); ok {
			m.cacheHits.Add(1)
			metrics.RecordSimilarQuery(m.ranker.Name(), true, time.Since(start))
			return slices.Clone(cached)
		}
	}
	m.cacheMisses.Add(1)

	request := num + m.config.Margin
	if request < num {
		request = math.MaxInt
	}
	ranked := m.ranker.Ranks(m.graph, work, request, m.config.Depth)
	out := make([]ScoredWork, 0, min(num, len(ranked)))
	for _, sw := range ranked {
		if sw.Work == work {
			continue
		}
		out = append(out, sw)
		if len(out) == num {
			break
		}
	}

	if m.cache != nil {
		m.cache.Add(key, slices.Clone(out))
	}
	metrics.RecordSimilarQuery(m.ranker.Name(), false, time.Since(start))

	m.logger.Debug().
		Int64("work_id", int64(work)).
		Int("num", num).
		Int("results", len(out)).
		Dur("duration", time.Since(start)).
		Msg("similar items ranked")

	return out
}

// RandomWork returns a uniformly chosen work of the graph.
// It reports false when the graph is empty.
func (m *Model) RandomWork(r *rand.Rand) (WorkID, bool) {
	works := m.graph.Works()
	if len(works) == 0 {
		return 0, false
	}
	return works[r.Intn(len(works))], true
}

// Graph returns the underlying graph.
func (m *Model) Graph() *Graph {
	return m.graph
}

// Algorithm returns the name of the active ranker.
func (m *Model) Algorithm() string {
	return m.ranker.Name()
}

// Stats returns query counters and graph statistics.
func (m *Model) Stats() ModelStats {
	return ModelStats{
		Algorithm:    m.ranker.Name(),
		Graph:        m.graph.Stats(),
		RequestCount: m.requestCount.Load(),
		CacheHits:    m.cacheHits.Load(),
		CacheMisses:  m.cacheMisses.Load(),
	}
}
