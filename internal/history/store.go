// ABOUTME: HistoryStore holds timestamped stat entries tagged by source.
// ABOUTME: Mutations are serialized and published to subscribers as Change events.
package history

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

// ChangeKind describes what a mutation did.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeReplaced ChangeKind = "replaced"
	ChangeRemoved  ChangeKind = "removed"
)

// Change is published after every mutation that altered the store.
type Change struct {
	Kind    ChangeKind
	Entries []models.StatEntry
	Version uint64
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store is an in-memory, insertion-ordered collection of stat entries.
// It is safe for concurrent use. The zero value is ready to use.
//
// Subscribers are called in mutation order, outside the data lock, so they
// may read from the store. They must not mutate it.
type Store struct {
	mu      sync.RWMutex
	entries []models.StatEntry
	version uint64
	subs    []subscriber
	nextSub int

	// notifyMu serializes writers and is held through delivery, so deliveries
	// keep mutation order. Writers take it before mu.
	notifyMu sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// AddEntry appends an entry. Entries are never deduplicated.
func (s *Store) AddEntry(e models.StatEntry) {
	s.AddEntries(e)
}

// AddEntries appends entries in order and publishes a single change.
func (s *Store) AddEntries(entries ...models.StatEntry) {
	if len(entries) == 0 {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	s.entries = append(s.entries, entries...)
	s.commit(ChangeAdded, append([]models.StatEntry(nil), entries...))
}

// ReplaceEntry swaps the entry with the same ID for e, keeping its position.
// It reports whether an entry was replaced.
func (s *Store) ReplaceEntry(e models.StatEntry) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == e.ID {
			s.entries[i] = e
			s.commit(ChangeReplaced, []models.StatEntry{e})
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// DeleteEntry removes the entry with the given ID.
func (s *Store) DeleteEntry(id uuid.UUID) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			removed := s.entries[i]
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.commit(ChangeRemoved, []models.StatEntry{removed})
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// ClearEntries removes every entry from src and returns how many were removed.
// Clearing a source with no entries is a no-op and publishes nothing.
func (s *Store) ClearEntries(src models.Source) int {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	kept := s.entries[:0:0]
	var removed []models.StatEntry
	for _, e := range s.entries {
		if e.Source == src {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return 0
	}
	s.entries = kept
	s.commit(ChangeRemoved, removed)
	return len(removed)
}

// Entries returns all entries of statType in insertion order, optionally
// restricted to src when src is non-nil.
func (s *Store) Entries(statType models.StatType, src *models.Source) []models.StatEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.StatEntry
	for _, e := range s.entries {
		if e.Type != statType {
			continue
		}
		if src != nil && e.Source != *src {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AllEntries returns a copy of every entry in insertion order.
func (s *Store) AllEntries() []models.StatEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.StatEntry(nil), s.entries...)
}

// Entry looks up an entry by ID.
func (s *Store) Entry(id uuid.UUID) (models.StatEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.StatEntry{}, false
}

// Find resolves a full ID or unique ID prefix to an entry.
func (s *Store) Find(idOrPrefix string) (models.StatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match models.StatEntry
	n := 0
	for _, e := range s.entries {
		if models.MatchesID(e.ID, idOrPrefix) {
			match = e
			n++
		}
	}
	switch n {
	case 0:
		return models.StatEntry{}, fmt.Errorf("entry %s: %w", idOrPrefix, models.ErrNotFound)
	case 1:
		return match, nil
	default:
		return models.StatEntry{}, fmt.Errorf("entry %s: %w", idOrPrefix, models.ErrAmbiguousID)
	}
}

// Latest returns the entry of statType with the greatest date.
// Ties go to the entry inserted last.
func (s *Store) Latest(statType models.StatType) (models.StatEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest models.StatEntry
	found := false
	for _, e := range s.entries {
		if e.Type != statType {
			continue
		}
		if !found || !e.Date.Before(latest.Date) {
			latest = e
			found = true
		}
	}
	return latest, found
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Version increases by one for every published change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for change events and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// commit must be called with notifyMu and mu held. It releases mu before
// delivering, so subscribers may read the store.
func (s *Store) commit(kind ChangeKind, entries []models.StatEntry) {
	s.version++
	ch := Change{Kind: kind, Entries: entries, Version: s.version}
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ch)
	}
}

// SortedByDate returns a copy of entries ordered by date. Equal dates keep
// their relative order.
func SortedByDate(entries []models.StatEntry, descending bool) []models.StatEntry {
	out := append([]models.StatEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
