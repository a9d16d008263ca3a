// ABOUTME: ID lookup helpers shared by the stores.
// ABOUTME: Lets users refer to records by full UUID or a unique prefix.
package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record matches an ID or prefix.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousID is returned when a prefix matches more than one record.
	ErrAmbiguousID = errors.New("ambiguous id prefix")
)

// MatchesID reports whether id equals idOrPrefix or starts with it.
// An empty prefix matches nothing.
func MatchesID(id uuid.UUID, idOrPrefix string) bool {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if idOrPrefix == "" {
		return false
	}
	return strings.HasPrefix(id.String(), idOrPrefix)
}
