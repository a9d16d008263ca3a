// ABOUTME: StatEntry model with StatType and Source enums for body measurements.
// ABOUTME: Entries are immutable values; edits replace an entry wholesale by ID.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatType identifies what a StatEntry measures.
type StatType string

const (
	StatWeight  StatType = "weight"
	StatHeight  StatType = "height"
	StatBodyFat StatType = "body_fat"
	StatBMI     StatType = "bmi"
	StatWaist   StatType = "waist"
	StatChest   StatType = "chest"
	StatHips    StatType = "hips"
	StatBiceps  StatType = "biceps"
	StatThigh   StatType = "thigh"
)

// StatUnits maps stat types to the canonical unit values are stored in.
var StatUnits = map[StatType]string{
	StatWeight:  "kg",
	StatHeight:  "cm",
	StatBodyFat: "%",
	StatBMI:     "",
	StatWaist:   "cm",
	StatChest:   "cm",
	StatHips:    "cm",
	StatBiceps:  "cm",
	StatThigh:   "cm",
}

// StatNames maps stat types to display names.
var StatNames = map[StatType]string{
	StatWeight:  "Weight",
	StatHeight:  "Height",
	StatBodyFat: "Body Fat",
	StatBMI:     "BMI",
	StatWaist:   "Waist",
	StatChest:   "Chest",
	StatHips:    "Hips",
	StatBiceps:  "Biceps",
	StatThigh:   "Thigh",
}

// AllStatTypes returns all valid stat types in display order.
var AllStatTypes = []StatType{
	StatWeight, StatHeight, StatBodyFat, StatBMI,
	StatWaist, StatChest, StatHips, StatBiceps, StatThigh,
}

// IsValidStatType checks if a string is a valid stat type.
func IsValidStatType(s string) bool {
	for _, st := range AllStatTypes {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Source records where a StatEntry came from.
type Source string

const (
	SourceManual      Source = "manual"
	SourceAppleHealth Source = "apple_health"
)

// AllSources returns all valid sources.
var AllSources = []Source{SourceManual, SourceAppleHealth}

// IsValidSource checks if a string is a valid source.
func IsValidSource(s string) bool {
	for _, src := range AllSources {
		if string(src) == s {
			return true
		}
	}
	return false
}

// StatEntry is a single timestamped measurement.
type StatEntry struct {
	ID     uuid.UUID `json:"id" yaml:"id"`
	Date   time.Time `json:"date" yaml:"date"`
	Value  float64   `json:"value" yaml:"value"`
	Type   StatType  `json:"type" yaml:"type"`
	Source Source    `json:"source" yaml:"source"`
}

// NewStatEntry creates a manual StatEntry dated now.
func NewStatEntry(statType StatType, value float64) StatEntry {
	return StatEntry{
		ID:     uuid.New(),
		Date:   time.Now(),
		Value:  value,
		Type:   statType,
		Source: SourceManual,
	}
}

// WithDate returns a copy of the entry with a different date.
func (e StatEntry) WithDate(t time.Time) StatEntry {
	e.Date = t
	return e
}

// WithSource returns a copy of the entry with a different source.
func (e StatEntry) WithSource(src Source) StatEntry {
	e.Source = src
	return e
}

// WithValue returns a copy of the entry with a different value.
func (e StatEntry) WithValue(v float64) StatEntry {
	e.Value = v
	return e
}

// Unit returns the canonical unit for the entry's type.
func (e StatEntry) Unit() string {
	return StatUnits[e.Type]
}

// FormatValue renders a value the way history rows show it: whole numbers
// without decimals, everything else with one decimal and a comma separator.
func FormatValue(v float64) string {
	if math.Mod(v, 1) == 0 {
		return fmt.Sprintf("%.0f", v)
	}
	return strings.Replace(fmt.Sprintf("%.1f", v), ".", ",", 1)
}

// FormatRowDate renders an entry date for history rows, e.g. "Mar 4 at 7:05".
func FormatRowDate(t time.Time) string {
	return t.Format("Jan 2 at 15:04")
}
