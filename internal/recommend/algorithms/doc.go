// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

// Package algorithms implements the rankers of the staff-affinity model.
//
// Each ranker implements the recommend.Ranker interface and is selected by
// name through recommend.Config.Algorithm:
//
//   - Diffusion: deterministic depth-limited probability diffusion (default)
//   - RandomWalk: Monte-Carlo random walk with restart
//
// # Diffusion
//
// Diffusion follows the num most probable transitions of the query work.
// Each neighbour gets its transition probability as direct credit, and the
// works it reaches one level deeper get that probability times their own
// score. Sub-rankings are memoized per work and depth for one call.
//
// # Random Walk
//
// RandomWalk runs num*WalksPerResult walks of fixed length from the query
// work and ranks the end points by frequency. The source is seeded from the
// configured seed and the query work, so repeated calls agree.
//
// # Usage
//
//	ranker, err := algorithms.New(cfg)
//	if err != nil {
//	    return err
//	}
//	top := ranker.Ranks(graph, workID, 10, cfg.Depth)
//
// # Thread Safety
//
// Rankers hold no mutable state. The graph they read is immutable, so any
// number of goroutines may rank concurrently.
package algorithms
