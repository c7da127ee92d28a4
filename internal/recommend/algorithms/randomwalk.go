// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package algorithms

import (
	"math/rand"

	"github.com/tomtom215/island/internal/recommend"
)

// RandomWalk estimates affinity by counting where short random walks with
// restart end up.
//
// Every walk starts at the query work. On each step it jumps back to the
// start when the current work has no neighbours, or with the restart
// probability on any step but the last. Otherwise it follows a uniformly
// chosen entry of the raw adjacency list, so shared staff count as weight.
// Walks that end at the start are discarded.
type RandomWalk struct {
	config recommend.RandomWalkConfig
	seed   int64
}

var _ recommend.Ranker = (*RandomWalk)(nil)

// NewRandomWalk creates a random walk ranker. Non-positive counts and an
// out-of-range restart probability get defaults.
func NewRandomWalk(cfg recommend.RandomWalkConfig, seed int64) *RandomWalk {
	if cfg.WalksPerResult <= 0 {
		cfg.WalksPerResult = recommend.DefaultWalksPerResult
	}
	if cfg.Steps <= 0 {
		cfg.Steps = recommend.DefaultWalkSteps
	}
	if cfg.RestartProbability < 0 || cfg.RestartProbability >= 1 {
		cfg.RestartProbability = recommend.DefaultRestartProbability
	}
	if seed == 0 {
		seed = recommend.DefaultSeed
	}
	return &RandomWalk{config: cfg, seed: seed}
}

// Name returns the algorithm identifier.
func (r *RandomWalk) Name() string {
	return recommend.AlgorithmRandomWalk
}

// Ranks runs num*WalksPerResult walks from cur and returns the most
// frequent end points. The score is the share of walks ending there.
// num is capped at the number of works in the graph.
//
// The configured walk length takes the place of depth. Each call seeds its
// own source from the ranker seed and cur, so results are reproducible.
func (r *RandomWalk) Ranks(g *recommend.Graph, cur recommend.WorkID, num, _ int) []recommend.ScoredWork {
	if num <= 0 || !g.HasWork(cur) {
		return []recommend.ScoredWork{}
	}

	// no more distinct end points exist than works in the graph
	num = min(num, len(g.Works()))

	rng := rand.New(rand.NewSource(r.seed ^ int64(cur))) //nolint:gosec // math/rand is fine for sampling walks
	walks := num * r.config.WalksPerResult

	acc := newAccumulator(num)
	for i := 0; i < walks; i++ {
		goal := r.walk(g, rng, cur)
		if goal == cur {
			continue
		}
		acc.add(goal, 1)
	}

	ranked := acc.top(num)
	for i := range ranked {
		ranked[i].Score /= float64(walks)
	}
	return ranked
}

func (r *RandomWalk) walk(g *recommend.Graph, rng *rand.Rand, start recommend.WorkID) recommend.WorkID {
	pos := start
	for remaining := r.config.Steps; remaining > 0; remaining-- {
		adj := g.Adjacency(pos)
		if len(adj) == 0 || (remaining > 1 && rng.Float64() < r.config.RestartProbability) {
			pos = start
			continue
		}
		pos = adj[rng.Intn(len(adj))]
	}
	return pos
}
