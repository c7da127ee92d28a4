// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"math"
	"slices"
	"testing"
)

// twoStaffEdges links works 1 and 2 through staff A and B, and work 3
// through A only.
func twoStaffEdges() []Edge {
	return []Edge{
		{Work: 1, Staff: "A"},
		{Work: 1, Staff: "B"},
		{Work: 2, Staff: "A"},
		{Work: 2, Staff: "B"},
		{Work: 3, Staff: "A"},
	}
}

func countOf(adj []WorkID, w WorkID) int {
	n := 0
	for _, v := range adj {
		if v == w {
			n++
		}
	}
	return n
}

func TestBuildGraph_AdjacencyMultiplicity(t *testing.T) {
	t.Parallel()

	g := BuildGraph(twoStaffEdges(), 1)

	tests := []struct {
		from, to WorkID
		want     int
	}{
		{from: 1, to: 1, want: 2},
		{from: 1, to: 2, want: 2},
		{from: 1, to: 3, want: 1},
		{from: 3, to: 1, want: 1},
		{from: 3, to: 3, want: 1},
		{from: 2, to: 3, want: 1},
	}
	for _, tt := range tests {
		if got := countOf(g.Adjacency(tt.from), tt.to); got != tt.want {
			t.Errorf("count of %d in Adjacency(%d) = %d, want %d", tt.to, tt.from, got, tt.want)
		}
	}

	if got := len(g.Adjacency(1)); got != 5 {
		t.Errorf("len(Adjacency(1)) = %d, want 5", got)
	}
}

func TestBuildGraph_AdjacencyMatchesSharedStaff(t *testing.T) {
	t.Parallel()

	edges := []Edge{
		{Work: 10, Staff: "x"}, {Work: 10, Staff: "y"}, {Work: 10, Staff: "z"},
		{Work: 20, Staff: "x"}, {Work: 20, Staff: "z"},
		{Work: 30, Staff: "y"}, {Work: 30, Staff: "z"},
		{Work: 40, Staff: "w"},
	}
	g := BuildGraph(edges, 1)

	for _, a := range g.Works() {
		for _, b := range g.Works() {
			shared := 0
			for _, s := range g.StaffOf(a) {
				if slices.Contains(g.StaffOf(b), s) {
					shared++
				}
			}
			if got := countOf(g.Adjacency(a), b); got != shared {
				t.Errorf("count of %d in Adjacency(%d) = %d, want %d shared staff", b, a, got, shared)
			}
		}
	}
}

func TestBuildGraph_FrequencyThresholdInclusive(t *testing.T) {
	t.Parallel()

	// A is credited on three works, B on two.
	g := BuildGraph(twoStaffEdges(), 3)

	if got := g.WorksOf("A"); !slices.Equal(got, []WorkID{1, 2, 3}) {
		t.Errorf("WorksOf(A) = %v, want [1 2 3]", got)
	}
	if got := g.WorksOf("B"); got != nil {
		t.Errorf("WorksOf(B) = %v, want nil (below threshold)", got)
	}
	if got := g.StaffFrequency("B"); got != 2 {
		t.Errorf("StaffFrequency(B) = %d, want 2", got)
	}

	stats := g.Stats()
	if stats.Staff != 1 || stats.DroppedStaff != 1 {
		t.Errorf("Stats() staff = %d dropped = %d, want 1 and 1", stats.Staff, stats.DroppedStaff)
	}
	if stats.MinStaffFreq != 3 {
		t.Errorf("Stats().MinStaffFreq = %d, want 3", stats.MinStaffFreq)
	}
}

func TestBuildGraph_DropsWorksWithoutKeptStaff(t *testing.T) {
	t.Parallel()

	edges := append(twoStaffEdges(), Edge{Work: 9, Staff: "solo"})
	g := BuildGraph(edges, 2)

	if g.HasWork(9) {
		t.Error("HasWork(9) = true, want false")
	}
	if !g.HasWork(1) {
		t.Error("HasWork(1) = false, want true")
	}
}

func TestBuildGraph_DuplicateEdgesCollapsed(t *testing.T) {
	t.Parallel()

	edges := append(twoStaffEdges(), twoStaffEdges()...)
	g := BuildGraph(edges, 1)

	if got := g.StaffFrequency("A"); got != 3 {
		t.Errorf("StaffFrequency(A) = %d, want 3", got)
	}
	if got := len(g.Adjacency(1)); got != 5 {
		t.Errorf("len(Adjacency(1)) = %d, want 5", got)
	}
	if got := g.Stats().Edges; got != 5 {
		t.Errorf("Stats().Edges = %d, want 5", got)
	}
}

func TestBuildGraph_OrderIndependent(t *testing.T) {
	t.Parallel()

	edges := twoStaffEdges()
	reversed := slices.Clone(edges)
	slices.Reverse(reversed)

	a := BuildGraph(edges, 1)
	b := BuildGraph(reversed, 1)

	for _, w := range a.Works() {
		if !slices.Equal(a.Adjacency(w), b.Adjacency(w)) {
			t.Errorf("Adjacency(%d) differs: %v vs %v", w, a.Adjacency(w), b.Adjacency(w))
		}
	}
}

func TestGraph_Transitions(t *testing.T) {
	t.Parallel()

	g := BuildGraph(twoStaffEdges(), 1)
	got := g.Transitions(1)

	if len(got) != 2 {
		t.Fatalf("len(Transitions(1)) = %d, want 2: %v", len(got), got)
	}
	if got[0].To != 2 || math.Abs(got[0].Probability-2.0/3.0) > 1e-12 {
		t.Errorf("Transitions(1)[0] = %+v, want {To:2 Probability:0.667}", got[0])
	}
	if got[1].To != 3 || math.Abs(got[1].Probability-1.0/3.0) > 1e-12 {
		t.Errorf("Transitions(1)[1] = %+v, want {To:3 Probability:0.333}", got[1])
	}

	// self-edges stay in the adjacency list
	if countOf(g.Adjacency(1), 1) != 2 {
		t.Error("self-edges removed from adjacency list")
	}
}

func TestGraph_TransitionsTiesKeepDiscoveryOrder(t *testing.T) {
	t.Parallel()

	g := BuildGraph(twoStaffEdges(), 1)
	got := g.Transitions(3)

	if len(got) != 2 || got[0].To != 1 || got[1].To != 2 {
		t.Errorf("Transitions(3) = %v, want [1 2] in discovery order", got)
	}
}

func TestGraph_IsolatedWorkHasNoTransitions(t *testing.T) {
	t.Parallel()

	edges := []Edge{{Work: 5, Staff: "a"}, {Work: 5, Staff: "b"}}
	g := BuildGraph(edges, 1)

	if got := len(g.Adjacency(5)); got != 2 {
		t.Errorf("len(Adjacency(5)) = %d, want 2 self-edges", got)
	}
	if got := g.Transitions(5); got != nil {
		t.Errorf("Transitions(5) = %v, want nil", got)
	}
}

func TestGraph_UnknownWork(t *testing.T) {
	t.Parallel()

	g := BuildGraph(twoStaffEdges(), 1)
	if g.Adjacency(99) != nil || g.Transitions(99) != nil || g.StaffOf(99) != nil {
		t.Error("unknown work returned non-nil data")
	}
}

func TestBuildGraph_Empty(t *testing.T) {
	t.Parallel()

	g := BuildGraph(nil, DefaultMinStaffFreq)
	if len(g.Works()) != 0 {
		t.Errorf("Works() = %v, want empty", g.Works())
	}
	if g.Stats().Works != 0 {
		t.Errorf("Stats().Works = %d, want 0", g.Stats().Works)
	}
}
