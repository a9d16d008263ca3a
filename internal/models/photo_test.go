// ABOUTME: Tests for ProgressPhoto and PhotoCategory.
// ABOUTME: Validates category parsing, display metadata, and tagging helpers.
package models

import "testing"

func TestAllCategoriesHaveMetadata(t *testing.T) {
	for _, c := range AllPhotoCategories {
		if c.DisplayName() == "" {
			t.Errorf("category %s has no display name", c)
		}
		if c.Icon() == "" {
			t.Errorf("category %s has no icon", c)
		}
		if !c.IsValid() {
			t.Errorf("category %s reported invalid", c)
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    PhotoCategory
		wantErr bool
	}{
		{"front", CategoryFront, false},
		{"Back", CategoryBack, false},
		{" Shoulders ", CategoryShoulders, false},
		{"neck", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCategoriesDedupes(t *testing.T) {
	got, err := ParseCategories("front, back,front,,")
	if err != nil {
		t.Fatalf("ParseCategories failed: %v", err)
	}
	if len(got) != 2 || got[0] != CategoryFront || got[1] != CategoryBack {
		t.Errorf("ParseCategories = %v", got)
	}

	empty, err := ParseCategories("")
	if err != nil || len(empty) != 0 {
		t.Errorf("ParseCategories(\"\") = %v, %v", empty, err)
	}
}

func TestProgressPhotoHasCategory(t *testing.T) {
	p := NewProgressPhoto("img-1", CategoryFront, CategoryAbs)
	if !p.HasCategory(CategoryAbs) {
		t.Error("expected photo to have abs")
	}
	if p.HasCategory(CategoryLegs) {
		t.Error("expected photo not to have legs")
	}
	if p.ID.String() == "" || p.Date.IsZero() {
		t.Error("expected ID and Date to be set")
	}
}
