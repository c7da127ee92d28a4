// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	ID      int64   `json:"id" validate:"gt=0"`
	Name    string  `json:"name" validate:"required,max=5"`
	Kind    string  `koanf:"kind" validate:"omitempty,oneof=a b"`
	Ratio   float64 `validate:"gte=0,lte=1"`
	BaseURL string  `json:"base_url" validate:"omitempty,url"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      sample
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid",
			input: sample{ID: 1, Name: "abc", Kind: "a", Ratio: 0.5, BaseURL: "https://api.annict.com"},
		},
		{
			name:       "missing id and name",
			input:      sample{},
			wantFields: []string{"id", "name"},
			wantMsg:    "name is required",
		},
		{
			name:       "koanf tag name",
			input:      sample{ID: 1, Name: "x", Kind: "c"},
			wantFields: []string{"kind"},
			wantMsg:    "kind must be one of: a b",
		},
		{
			name:       "go field name fallback",
			input:      sample{ID: 1, Name: "x", Ratio: 2},
			wantFields: []string{"Ratio"},
			wantMsg:    "Ratio must be less than or equal to 1",
		},
		{
			name:       "string max",
			input:      sample{ID: 1, Name: "toolong"},
			wantFields: []string{"name"},
			wantMsg:    "name must be at most 5 characters",
		},
		{
			name:       "invalid url",
			input:      sample{ID: 1, Name: "x", BaseURL: "not a url"},
			wantFields: []string{"base_url"},
			wantMsg:    "base_url must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v, want nil", err)
				}
				return
			}

			var verrs *Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidateStruct() error = %v, want *Errors", err)
			}
			for _, f := range tt.wantFields {
				if !verrs.Has(f) {
					t.Errorf("expected field %q in errors: %v", f, verrs)
				}
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestErrors_EmptyMessage(t *testing.T) {
	t.Parallel()

	if got := (&Errors{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q, want 'validation failed'", got)
	}
}
