// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package algorithms

import (
	"github.com/tomtom215/island/internal/recommend"
)

// Diffusion spreads probability mass from the query work along the staff
// graph for a bounded number of hops.
//
// At every hop only the num most probable neighbours are followed. A
// neighbour receives its own transition probability as direct credit, and
// the works reachable through it receive that probability multiplied by
// their scores one level deeper. The result is deterministic.
type Diffusion struct{}

var _ recommend.Ranker = (*Diffusion)(nil)

// NewDiffusion creates a diffusion ranker.
func NewDiffusion() *Diffusion {
	return &Diffusion{}
}

// Name returns the algorithm identifier.
func (d *Diffusion) Name() string {
	return recommend.AlgorithmDiffusion
}

// Ranks returns at most num works ordered by descending score.
//
// With depth <= 0, or when cur has no neighbours, the result is cur alone
// with score 1.
func (d *Diffusion) Ranks(g *recommend.Graph, cur recommend.WorkID, num, depth int) []recommend.ScoredWork {
	if num <= 0 {
		return []recommend.ScoredWork{}
	}
	memo := make(map[memoKey][]recommend.ScoredWork)
	return d.ranks(g, cur, num, depth, memo)
}

// memoKey identifies a sub-ranking; num is fixed for one top-level call.
type memoKey struct {
	work  recommend.WorkID
	depth int
}

func (d *Diffusion) ranks(g *recommend.Graph, cur recommend.WorkID, num, depth int, memo map[memoKey][]recommend.ScoredWork) []recommend.ScoredWork {
	transitions := g.Transitions(cur)
	if depth <= 0 || len(transitions) == 0 {
		return []recommend.ScoredWork{{Work: cur, Score: 1.0}}
	}

	key := memoKey{work: cur, depth: depth}
	if cached, ok := memo[key]; ok {
		return cached
	}

	if len(transitions) > num {
		transitions = transitions[:num]
	}

	n := len(transitions)
	acc := newAccumulator(n * (n + 1))
	for _, t := range transitions {
		for _, sw := range d.ranks(g, t.To, num, depth-1, memo) {
			// the neighbour's own entry is covered by its direct credit
			if sw.Work == t.To {
				continue
			}
			acc.add(sw.Work, t.Probability*sw.Score)
		}
		acc.add(t.To, t.Probability)
	}

	result := acc.top(num)
	memo[key] = result
	return result
}
