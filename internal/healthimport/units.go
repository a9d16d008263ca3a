// ABOUTME: Unit definitions and conversion into the store's canonical units.
// ABOUTME: Mass converts to kilograms, length to centimeters, ratios to percent.
package healthimport

import "fmt"

// Unit names a measurement unit reported by a provider.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitPound      Unit = "lb"
	UnitStone      Unit = "st"
	UnitCentimeter Unit = "cm"
	UnitMillimeter Unit = "mm"
	UnitMeter      Unit = "m"
	UnitInch       Unit = "in"
	UnitFoot       Unit = "ft"
	UnitPercent    Unit = "%"
	// UnitFraction is a ratio in 0..1, the way most platforms report body fat.
	UnitFraction Unit = "fraction"
)

type dimension int

const (
	dimMass dimension = iota + 1
	dimLength
	dimRatio
)

type unitInfo struct {
	dim dimension
	// factor converts one of this unit into the dimension's base unit
	// (kg, cm, percent).
	factor float64
}

var units = map[Unit]unitInfo{
	UnitKilogram:   {dimMass, 1},
	UnitGram:       {dimMass, 0.001},
	UnitPound:      {dimMass, 0.45359237},
	UnitStone:      {dimMass, 6.35029318},
	UnitCentimeter: {dimLength, 1},
	UnitMillimeter: {dimLength, 0.1},
	UnitMeter:      {dimLength, 100},
	UnitInch:       {dimLength, 2.54},
	UnitFoot:       {dimLength, 30.48},
	UnitPercent:    {dimRatio, 1},
	UnitFraction:   {dimRatio, 100},
}

// Convert converts v from one unit to another of the same dimension.
func Convert(v float64, from, to Unit) (float64, error) {
	f, ok := units[from]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrIncompatibleUnit, from)
	}
	t, ok := units[to]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrIncompatibleUnit, to)
	}
	if f.dim != t.dim {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrIncompatibleUnit, from, to)
	}
	return v * f.factor / t.factor, nil
}
