// ABOUTME: Error taxonomy for authorization and per-metric import tasks.
// ABOUTME: Task errors are contained in results and never abort sibling tasks.
package healthimport

import "errors"

var (
	// ErrProviderUnavailable means the device has no health data store. Not retryable.
	ErrProviderUnavailable = errors.New("health data not available")
	// ErrAuthorizationDenied means the user declined access.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrTypeUnavailable means the provider does not support a metric type.
	ErrTypeUnavailable = errors.New("type unavailable")
	// ErrNoSamplesFound is a task failure for metrics that require samples.
	ErrNoSamplesFound = errors.New("no samples found")
	// ErrProviderQuery wraps an error reported by the provider.
	ErrProviderQuery = errors.New("provider query failed")
	// ErrIncompatibleUnit means a sample's unit cannot become the canonical unit.
	ErrIncompatibleUnit = errors.New("incompatible unit")

	// ErrNotAuthorized rejects an import started before authorization.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrImportInProgress rejects an import started while one is running.
	ErrImportInProgress = errors.New("import already in progress")
)
