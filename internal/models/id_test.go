// ABOUTME: Tests for ID prefix matching.
// ABOUTME: Covers full IDs, prefixes, case, and empty input.
package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestMatchesID(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000001")

	tests := []struct {
		in   string
		want bool
	}{
		{id.String(), true},
		{"3f2a9c1e", true},
		{"3F2A", true},
		{" 3f2a ", true},
		{"3f2b", false},
		{"", false},
		{strings.Repeat("f", 40), false},
	}
	for _, tt := range tests {
		if got := MatchesID(id, tt.in); got != tt.want {
			t.Errorf("MatchesID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
