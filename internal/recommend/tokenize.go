// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"strings"
	"unicode/utf8"
)

const (
	// NameDelimiter separates names inside a raw credit string.
	NameDelimiter = "、"

	// MaxNameLength is the exclusive upper bound, in characters, of a kept
	// token. Longer tokens are almost always studio names or descriptions.
	MaxNameLength = 10
)

// Tokenize splits a raw credit string into individual staff names.
// Empty tokens and tokens of MaxNameLength characters or more are dropped.
func Tokenize(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, NameDelimiter)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || utf8.RuneCountInString(p) >= MaxNameLength {
			continue
		}
		names = append(names, p)
	}
	return names
}

// EdgesFromCredits tokenizes every credit row into the set of distinct
// (work, staff) edges, in first-seen order.
func EdgesFromCredits(credits []StaffCredit) []Edge {
	seen := make(map[Edge]struct{}, len(credits))
	edges := make([]Edge, 0, len(credits))
	for _, c := range credits {
		for _, name := range Tokenize(c.Names) {
			e := Edge{Work: c.Work, Staff: name}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges
}
