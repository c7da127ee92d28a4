// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

// Package recommend implements the staff-affinity model for anime works.
//
// # Architecture
//
// Works and staff form a bipartite graph. The model projects it onto works:
// two works are linked once for every staff member credited on both.
//
//   - Tokenize splits raw credit strings into names
//   - BuildGraph filters rare staff and builds the adjacency lists
//   - A Ranker (see package algorithms) scores related works
//   - Model wraps a graph and a ranker behind SimilarItems
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	ranker, err := algorithms.New(cfg)
//	model, err := recommend.NewModelFromSource(ctx, db, ranker, cfg, logger)
//
//	for _, sw := range model.SimilarItems(workID, 10) {
//	    fmt.Println(sw.Work, sw.Score)
//	}
//
// # Thread Safety
//
// The graph never changes after it is built, so queries need no locks.
// The result cache carries its own mutex.
package recommend
