// ABOUTME: ProgressPhoto model and the closed PhotoCategory enumeration.
// ABOUTME: A photo is tagged with one or more body-region categories.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhotoCategory is a body-region tag for a progress photo.
type PhotoCategory string

const (
	CategoryFront     PhotoCategory = "front"
	CategoryBack      PhotoCategory = "back"
	CategorySide      PhotoCategory = "side"
	CategoryArms      PhotoCategory = "arms"
	CategoryChest     PhotoCategory = "chest"
	CategoryAbs       PhotoCategory = "abs"
	CategoryLegs      PhotoCategory = "legs"
	CategoryShoulders PhotoCategory = "shoulders"
)

// AllPhotoCategories lists every category in display order.
var AllPhotoCategories = []PhotoCategory{
	CategoryFront, CategoryBack, CategorySide, CategoryArms,
	CategoryChest, CategoryAbs, CategoryLegs, CategoryShoulders,
}

var categoryNames = map[PhotoCategory]string{
	CategoryFront:     "Front",
	CategoryBack:      "Back",
	CategorySide:      "Side",
	CategoryArms:      "Arms",
	CategoryChest:     "Chest",
	CategoryAbs:       "Abs",
	CategoryLegs:      "Legs",
	CategoryShoulders: "Shoulders",
}

var categoryIcons = map[PhotoCategory]string{
	CategoryFront:     "figure.stand",
	CategoryBack:      "figure.stand.line.dotted.figure.stand",
	CategorySide:      "figure.walk",
	CategoryArms:      "figure.arms.open",
	CategoryChest:     "figure.strengthtraining.traditional",
	CategoryAbs:       "figure.core.training",
	CategoryLegs:      "figure.step.training",
	CategoryShoulders: "figure.boxing",
}

// DisplayName returns the human-readable category name.
func (c PhotoCategory) DisplayName() string {
	return categoryNames[c]
}

// Icon returns the icon name used for the category.
func (c PhotoCategory) Icon() string {
	return categoryIcons[c]
}

// IsValid reports whether c is one of the known categories.
func (c PhotoCategory) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory parses a category by id or display name, case-insensitively.
func ParseCategory(s string) (PhotoCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllPhotoCategories {
		if string(c) == s || strings.ToLower(c.DisplayName()) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown photo category: %s", s)
}

// ParseCategories parses a comma-separated category list, dropping duplicates.
func ParseCategories(s string) ([]PhotoCategory, error) {
	var out []PhotoCategory
	seen := make(map[PhotoCategory]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// ProgressPhoto is a dated photo tagged with body-region categories.
// ImageRef is an opaque handle resolved by the storage layer.
type ProgressPhoto struct {
	ID         uuid.UUID       `json:"id" yaml:"id"`
	Date       time.Time       `json:"date" yaml:"date"`
	Categories []PhotoCategory `json:"categories" yaml:"categories"`
	ImageRef   string          `json:"image_ref" yaml:"image_ref"`
}

// NewProgressPhoto creates a photo dated now.
func NewProgressPhoto(imageRef string, categories ...PhotoCategory) ProgressPhoto {
	return ProgressPhoto{
		ID:         uuid.New(),
		Date:       time.Now(),
		Categories: categories,
		ImageRef:   imageRef,
	}
}

// WithDate returns a copy of the photo with a different date.
func (p ProgressPhoto) WithDate(t time.Time) ProgressPhoto {
	p.Date = t
	return p
}

// HasCategory reports whether the photo is tagged with c.
func (p ProgressPhoto) HasCategory(c PhotoCategory) bool {
	for _, pc := range p.Categories {
		if pc == c {
			return true
		}
	}
	return false
}
