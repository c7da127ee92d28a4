// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"cmp"
	"slices"
)

// Graph is the work-to-work graph induced by shared staff.
//
// A Graph is immutable after BuildGraph returns and is safe for concurrent
// readers without locking. Slices returned by accessors are shared and must
// not be modified.
type Graph struct {
	freq        map[string]int
	workStaff   map[WorkID][]string
	staffWorks  map[string][]WorkID
	adjacency   map[WorkID][]WorkID
	transitions map[WorkID][]Transition
	works       []WorkID
	stats       GraphStats
}

// BuildGraph builds the staff graph from a set of credit edges.
//
// Duplicate edges are collapsed. Staff credited on fewer than minStaffFreq
// distinct works are dropped; a frequency equal to the threshold is kept.
// Edges are ordered by (work, staff) before construction so the result is
// independent of input order.
func BuildGraph(edges []Edge, minStaffFreq int) *Graph {
	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, compareEdges)
	sorted = slices.Compact(sorted)

	freq := make(map[string]int)
	for _, e := range sorted {
		freq[e.Staff]++
	}

	g := &Graph{
		freq:        freq,
		workStaff:   make(map[WorkID][]string),
		staffWorks:  make(map[string][]WorkID),
		adjacency:   make(map[WorkID][]WorkID),
		transitions: make(map[WorkID][]Transition),
		stats:       GraphStats{MinStaffFreq: minStaffFreq},
	}

	for _, e := range sorted {
		if freq[e.Staff] < minStaffFreq {
			continue
		}
		if _, ok := g.workStaff[e.Work]; !ok {
			g.works = append(g.works, e.Work)
		}
		g.workStaff[e.Work] = append(g.workStaff[e.Work], e.Staff)
		g.staffWorks[e.Staff] = append(g.staffWorks[e.Staff], e.Work)
		g.stats.Edges++
	}

	for _, w := range g.works {
		var adj []WorkID
		for _, s := range g.workStaff[w] {
			adj = append(adj, g.staffWorks[s]...)
		}
		g.adjacency[w] = adj
		g.transitions[w] = transitionsOf(w, adj)
		g.stats.AdjacencyEntries += len(adj)
	}

	g.stats.Works = len(g.works)
	g.stats.Staff = len(g.staffWorks)
	g.stats.DroppedStaff = len(freq) - len(g.staffWorks)

	return g
}

func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.Work, b.Work); c != 0 {
		return c
	}
	return cmp.Compare(a.Staff, b.Staff)
}

// transitionsOf groups an adjacency list by destination in first-appearance
// order and normalizes the counts. Self-edges are left out of both the
// counts and the denominator. The result is sorted stably by probability.
func transitionsOf(src WorkID, adj []WorkID) []Transition {
	index := make(map[WorkID]int)
	var counts []int
	var dsts []WorkID
	total := 0
	for _, dst := range adj {
		if dst == src {
			continue
		}
		total++
		if i, ok := index[dst]; ok {
			counts[i]++
			continue
		}
		index[dst] = len(dsts)
		dsts = append(dsts, dst)
		counts = append(counts, 1)
	}
	if total == 0 {
		return nil
	}

	out := make([]Transition, len(dsts))
	for i, dst := range dsts {
		out[i] = Transition{To: dst, Probability: float64(counts[i]) / float64(total)}
	}
	slices.SortStableFunc(out, func(a, b Transition) int {
		return cmp.Compare(b.Probability, a.Probability)
	})
	return out
}

// Adjacency returns the flat adjacency list of w. A work b appears once for
// every staff member shared with w, w itself included.
func (g *Graph) Adjacency(w WorkID) []WorkID {
	return g.adjacency[w]
}

// Transitions returns the one-step destination distribution of w, sorted by
// descending probability with ties in discovery order. Self-edges are
// excluded. Works without other neighbours return nil.
func (g *Graph) Transitions(w WorkID) []Transition {
	return g.transitions[w]
}

// StaffOf returns the kept staff of w in name order.
func (g *Graph) StaffOf(w WorkID) []string {
	return g.workStaff[w]
}

// WorksOf returns the works credited to staff member s in id order.
func (g *Graph) WorksOf(s string) []WorkID {
	return g.staffWorks[s]
}

// StaffFrequency returns the number of distinct works s is credited on,
// counted before the frequency filter.
func (g *Graph) StaffFrequency(s string) int {
	return g.freq[s]
}

// HasWork reports whether w has at least one kept staff member.
func (g *Graph) HasWork(w WorkID) bool {
	_, ok := g.workStaff[w]
	return ok
}

// Works returns every work of the graph in ascending id order.
func (g *Graph) Works() []WorkID {
	return g.works
}

// Stats returns size statistics of the graph.
func (g *Graph) Stats() GraphStats {
	return g.stats
}
