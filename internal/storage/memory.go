// ABOUTME: In-process Repository that keeps nothing past the process.
// ABOUTME: Backs the "memory" backend and tests that need a repository without disk.
package storage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

// MemoryStore is a Repository held entirely in memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []models.StatEntry
	photos  []models.ProgressPhoto
	images  map[string][]byte
}

// Compile-time check that MemoryStore implements Repository.
var _ Repository = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string][]byte)}
}

func (m *MemoryStore) InsertEntries(entries []models.StatEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MemoryStore) UpdateEntry(e models.StatEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == e.ID {
			m.entries[i] = e
			return nil
		}
	}
	return fmt.Errorf("update entry %s: %w", e.ID, ErrNotFound)
}

func (m *MemoryStore) DeleteEntries(ids []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *MemoryStore) LoadEntries() ([]models.StatEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StatEntry(nil), m.entries...), nil
}

func (m *MemoryStore) InsertPhoto(p models.ProgressPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Categories = append([]models.PhotoCategory(nil), p.Categories...)
	m.photos = append(m.photos, p)
	return nil
}

func (m *MemoryStore) DeletePhoto(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.photos {
		if p.ID == id {
			m.photos = append(m.photos[:i], m.photos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete photo %s: %w", id, ErrNotFound)
}

func (m *MemoryStore) LoadPhotos() ([]models.ProgressPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProgressPhoto(nil), m.photos...), nil
}

func (m *MemoryStore) PutImage(data []byte) (string, error) {
	ref := newImageRef()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (m *MemoryStore) GetImage(ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.images[ref]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", ref, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) DeleteImage(ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, ref)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
