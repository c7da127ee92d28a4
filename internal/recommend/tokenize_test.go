// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty input", raw: "", want: nil},
		{name: "single name", raw: "新房昭之", want: []string{"新房昭之"}},
		{name: "multiple names", raw: "新房昭之、宮本幸裕、尾石達也", want: []string{"新房昭之", "宮本幸裕", "尾石達也"}},
		{
			name: "drops ten character token",
			raw:  "あいうえおかきくけこ、山田",
			want: []string{"山田"},
		},
		{
			name: "keeps nine character token",
			raw:  "あいうえおかきくけ",
			want: []string{"あいうえおかきくけ"},
		},
		{
			name: "drops long studio description",
			raw:  "シャフト（アニメーション制作）、新房昭之",
			want: []string{"新房昭之"},
		},
		{name: "drops empty tokens", raw: "、山田、、田中、", want: []string{"山田", "田中"}},
		{name: "ascii comma is not a delimiter", raw: "Bob,Al", want: []string{"Bob,Al"}},
		{name: "length counts characters not bytes", raw: "abcdefghi", want: []string{"abcdefghi"}},
		{name: "ten ascii characters dropped", raw: "abcdefghij", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Tokenize(tt.raw)
			if len(got) != len(tt.want) || !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEdgesFromCredits(t *testing.T) {
	t.Parallel()

	credits := []StaffCredit{
		{Work: 1, Names: "山田、田中"},
		{Work: 1, Names: "山田"},
		{Work: 2, Names: "田中、とても長い会社名株式会社"},
		{Work: 3, Names: ""},
	}

	got := EdgesFromCredits(credits)
	want := []Edge{
		{Work: 1, Staff: "山田"},
		{Work: 1, Staff: "田中"},
		{Work: 2, Staff: "田中"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("EdgesFromCredits() = %v, want %v", got, want)
	}
}
