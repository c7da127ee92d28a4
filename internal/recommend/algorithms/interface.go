// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package algorithms

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tomtom215/island/internal/recommend"
)

// New returns the ranker selected by cfg.Algorithm.
func New(cfg *recommend.Config) (recommend.Ranker, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	switch cfg.Algorithm {
	case recommend.AlgorithmDiffusion, "":
		return NewDiffusion(), nil
	case recommend.AlgorithmRandomWalk:
		return NewRandomWalk(cfg.RandomWalk, cfg.Seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", recommend.ErrInvalidConfig, cfg.Algorithm)
	}
}

// accumulator sums scores per work and remembers discovery order.
type accumulator struct {
	index map[recommend.WorkID]int
	items []recommend.ScoredWork
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{
		index: make(map[recommend.WorkID]int, capacity),
		items: make([]recommend.ScoredWork, 0, capacity),
	}
}

func (a *accumulator) add(w recommend.WorkID, score float64) {
	if i, ok := a.index[w]; ok {
		a.items[i].Score += score
		return
	}
	a.index[w] = len(a.items)
	a.items = append(a.items, recommend.ScoredWork{Work: w, Score: score})
}

// top sorts by descending score, ties in discovery order, and keeps num.
func (a *accumulator) top(num int) []recommend.ScoredWork {
	out := a.items
	slices.SortStableFunc(out, func(x, y recommend.ScoredWork) int {
		return cmp.Compare(y.Score, x.Score)
	})
	if len(out) > num {
		out = out[:num]
	}
	return out
}
