// ABOUTME: Tests for timestamp parsing.
// ABOUTME: Covers each accepted layout and rejects unknown ones.
package models

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-12-14 07:00", time.Date(2024, 12, 14, 7, 0, 0, 0, loc), false},
		{"2024-12-14T07:00", time.Date(2024, 12, 14, 7, 0, 0, 0, loc), false},
		{"2024-12-14", time.Date(2024, 12, 14, 0, 0, 0, 0, loc), false},
		{"2024-12-14T07:00:00Z", time.Date(2024, 12, 14, 7, 0, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in, loc)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTime(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTime(%q) failed: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
