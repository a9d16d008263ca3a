// ABOUTME: Repository interface for durable lifetracker data.
// ABOUTME: Backends persist stat entries, progress photos, and image blobs in insertion order.
package storage

import (
	"errors"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

// ErrNotFound is returned when a record or image does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for lifetracker data.
// Load methods return records in the order they were inserted.
type Repository interface {
	// Stat entry operations
	InsertEntries(entries []models.StatEntry) error
	UpdateEntry(e models.StatEntry) error
	DeleteEntries(ids []uuid.UUID) error
	LoadEntries() ([]models.StatEntry, error)

	// Photo operations
	InsertPhoto(p models.ProgressPhoto) error
	DeletePhoto(id uuid.UUID) error
	LoadPhotos() ([]models.ProgressPhoto, error)

	// Image blobs, addressed by the ref stored on a photo
	PutImage(data []byte) (string, error)
	GetImage(ref string) ([]byte, error)
	DeleteImage(ref string) error

	// Lifecycle
	Close() error
}

// newImageRef returns a fresh reference for an image blob.
func newImageRef() string {
	return uuid.New().String()
}
