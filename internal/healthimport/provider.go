// ABOUTME: Contract for the external health data provider and its samples.
// ABOUTME: Providers are opaque sources of timestamped quantity samples.
package healthimport

import (
	"context"
	"time"

	"github.com/harperreed/lifetracker/internal/models"
)

// QuantityType is the provider's handle for a measurable type.
type QuantityType string

// Sample is a single timestamped measurement returned by a provider.
type Sample struct {
	Value     float64   `json:"value" yaml:"value"`
	Unit      Unit      `json:"unit" yaml:"unit"`
	StartDate time.Time `json:"start_date" yaml:"start_date"`
}

// In converts the sample's quantity to unit.
func (s Sample) In(unit Unit) (float64, error) {
	return Convert(s.Value, s.Unit, unit)
}

// Provider is the platform health store the coordinator imports from.
type Provider interface {
	// IsAvailable reports whether health data exists on this device at all.
	IsAvailable() bool

	// RequestAuthorization asks the user for access. granted is false when
	// the user declined.
	RequestAuthorization(ctx context.Context, read, write []models.StatType) (granted bool, err error)

	// QuantityType resolves the provider's handle for kind.
	QuantityType(kind models.StatType) (QuantityType, bool)

	// QueryAllSamples returns every historical sample of qt with no time
	// bound, sorted ascending by start date.
	QueryAllSamples(ctx context.Context, qt QuantityType) ([]Sample, error)
}

// AuthorizationReporter is implemented by providers that remember a prior
// authorization decision.
type AuthorizationReporter interface {
	IsAuthorized(kind models.StatType) bool
}
