// ABOUTME: PhotoIndex holds progress photos tagged with body-region categories.
// ABOUTME: Supports category queries, latest-per-category lookup, and day grouping.
package photos

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

// ValidationError reports a photo rejected at insert time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid photo %s: %s", e.Field, e.Reason)
}

// ChangeKind describes what a mutation did.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
)

// Change is published after every mutation of the index.
type Change struct {
	Kind    ChangeKind
	Photo   models.ProgressPhoto
	Version uint64
}

// CalendarDay is a date truncated to day granularity in the index's location.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) CalendarDay {
	y, m, d := t.In(loc).Date()
	return CalendarDay{Year: y, Month: m, Day: d}
}

// Before reports whether d is earlier than o.
func (d CalendarDay) Before(o CalendarDay) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Start returns midnight of d in loc.
func (d CalendarDay) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d CalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

type subscriber struct {
	id int
	fn func(Change)
}

// Index is an in-memory, insertion-ordered set of progress photos.
// It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	photos  []models.ProgressPhoto
	loc     *time.Location
	version uint64
	subs    []subscriber
	nextSub int

	// notifyMu is taken before mu by every writer and held through delivery.
	notifyMu sync.Mutex
}

// Option configures an Index.
type Option func(*Index)

// WithLocation sets the time zone used for calendar-day grouping. A nil loc
// keeps the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(ix *Index) {
		if loc != nil {
			ix.loc = loc
		}
	}
}

// New creates an empty Index grouping days in the local time zone.
func New(opts ...Option) *Index {
	ix := &Index{loc: time.Local}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Location returns the time zone used for calendar-day grouping.
func (ix *Index) Location() *time.Location {
	return ix.loc
}

// Validate reports whether p could be stored, without storing it.
func Validate(p models.ProgressPhoto) error {
	if len(p.Categories) == 0 {
		return &ValidationError{Field: "categories", Reason: "a photo must belong to at least one category"}
	}
	for _, c := range p.Categories {
		if !c.IsValid() {
			return &ValidationError{Field: "categories", Reason: fmt.Sprintf("unknown category %q", c)}
		}
	}
	return nil
}

// AddPhoto appends p. Photos without a category are rejected with a
// *ValidationError and never stored.
func (ix *Index) AddPhoto(p models.ProgressPhoto) error {
	if err := Validate(p); err != nil {
		return err
	}
	p.Categories = append([]models.PhotoCategory(nil), p.Categories...)

	ix.notifyMu.Lock()
	defer ix.notifyMu.Unlock()
	ix.mu.Lock()
	ix.photos = append(ix.photos, p)
	ix.commit(ChangeAdded, p)
	return nil
}

// DeletePhoto removes the photo with the given ID.
func (ix *Index) DeletePhoto(id uuid.UUID) (models.ProgressPhoto, bool) {
	ix.notifyMu.Lock()
	defer ix.notifyMu.Unlock()
	ix.mu.Lock()
	for i, p := range ix.photos {
		if p.ID == id {
			ix.photos = append(ix.photos[:i], ix.photos[i+1:]...)
			ix.commit(ChangeRemoved, p)
			return p, true
		}
	}
	ix.mu.Unlock()
	return models.ProgressPhoto{}, false
}

// Photo looks up a photo by ID.
func (ix *Index) Photo(id uuid.UUID) (models.ProgressPhoto, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, p := range ix.photos {
		if p.ID == id {
			return p, true
		}
	}
	return models.ProgressPhoto{}, false
}

// Find resolves a full ID or unique ID prefix to a photo.
func (ix *Index) Find(idOrPrefix string) (models.ProgressPhoto, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var match models.ProgressPhoto
	n := 0
	for _, p := range ix.photos {
		if models.MatchesID(p.ID, idOrPrefix) {
			match = p
			n++
		}
	}
	switch n {
	case 0:
		return models.ProgressPhoto{}, fmt.Errorf("photo %s: %w", idOrPrefix, models.ErrNotFound)
	case 1:
		return match, nil
	default:
		return models.ProgressPhoto{}, fmt.Errorf("photo %s: %w", idOrPrefix, models.ErrAmbiguousID)
	}
}

// AllPhotos returns every photo in insertion order.
func (ix *Index) AllPhotos() []models.ProgressPhoto {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]models.ProgressPhoto(nil), ix.photos...)
}

// Photos returns the photos tagged with c in insertion order.
func (ix *Index) Photos(c models.PhotoCategory) []models.ProgressPhoto {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []models.ProgressPhoto
	for _, p := range ix.photos {
		if p.HasCategory(c) {
			out = append(out, p)
		}
	}
	return out
}

// LatestByCategory maps each category with at least one photo to the photo
// with the greatest date. Ties go to the photo inserted last.
func (ix *Index) LatestByCategory() map[models.PhotoCategory]models.ProgressPhoto {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	latest := make(map[models.PhotoCategory]models.ProgressPhoto)
	for _, p := range ix.photos {
		for _, c := range p.Categories {
			cur, ok := latest[c]
			if !ok || !p.Date.Before(cur.Date) {
				latest[c] = p
			}
		}
	}
	return latest
}

// PhotosByDate groups the photos tagged with c by calendar day. Each bucket
// keeps insertion order; use SortedDays for display order.
func (ix *Index) PhotosByDate(c models.PhotoCategory) map[CalendarDay][]models.ProgressPhoto {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	groups := make(map[CalendarDay][]models.ProgressPhoto)
	for _, p := range ix.photos {
		if !p.HasCategory(c) {
			continue
		}
		day := DayOf(p.Date, ix.loc)
		groups[day] = append(groups[day], p)
	}
	return groups
}

// SortedDays returns the keys of groups, most recent day first.
func SortedDays(groups map[CalendarDay][]models.ProgressPhoto) []CalendarDay {
	days := make([]CalendarDay, 0, len(groups))
	for d := range groups {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[j].Before(days[i])
	})
	return days
}

// Count returns the number of photos.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.photos)
}

// Version increases by one for every published change.
func (ix *Index) Version() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.version
}

// Subscribe registers fn for change events. Handlers run in mutation order
// and must not mutate the index.
func (ix *Index) Subscribe(fn func(Change)) (cancel func()) {
	ix.mu.Lock()
	id := ix.nextSub
	ix.nextSub++
	ix.subs = append(ix.subs, subscriber{id: id, fn: fn})
	ix.mu.Unlock()

	return func() {
		ix.mu.Lock()
		defer ix.mu.Unlock()
		for i, sub := range ix.subs {
			if sub.id == id {
				ix.subs = append(ix.subs[:i:i], ix.subs[i+1:]...)
				return
			}
		}
	}
}

// commit must be called with notifyMu and mu held. It releases mu before
// delivering.
func (ix *Index) commit(kind ChangeKind, p models.ProgressPhoto) {
	ix.version++
	ch := Change{Kind: kind, Photo: p, Version: ix.version}
	subs := append([]subscriber(nil), ix.subs...)
	ix.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ch)
	}
}
