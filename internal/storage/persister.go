// ABOUTME: Write-through persistence from the in-memory stores to a Repository.
// ABOUTME: Subscribes to change events and replays each change in event order.
package storage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/photos"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Persister mirrors store changes into a Repository. The stores never see
// storage failures; they are logged and kept for Err.
type Persister struct {
	repo Repository
	log  logrus.FieldLogger

	mu      sync.Mutex
	err     error
	cancels []func()
}

// NewPersister creates a persister writing to repo.
func NewPersister(repo Repository, log logrus.FieldLogger) *Persister {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Persister{repo: repo, log: log}
}

// Restore seeds empty stores with everything the repository holds, in
// insertion order. Call it before Watch so the seed is not written back.
func Restore(repo Repository, store *history.Store, ix *photos.Index) error {
	entries, err := repo.LoadEntries()
	if err != nil {
		return fmt.Errorf("restore entries: %w", err)
	}
	store.AddEntries(entries...)

	saved, err := repo.LoadPhotos()
	if err != nil {
		return fmt.Errorf("restore photos: %w", err)
	}
	var errs error
	for _, p := range saved {
		errs = multierr.Append(errs, ix.AddPhoto(p))
	}
	if errs != nil {
		return fmt.Errorf("restore photos: %w", errs)
	}
	return nil
}

// WatchHistory starts persisting changes from store.
func (p *Persister) WatchHistory(store *history.Store) {
	cancel := store.Subscribe(p.onHistoryChange)
	p.mu.Lock()
	p.cancels = append(p.cancels, cancel)
	p.mu.Unlock()
}

// WatchPhotos starts persisting changes from ix.
func (p *Persister) WatchPhotos(ix *photos.Index) {
	cancel := ix.Subscribe(p.onPhotoChange)
	p.mu.Lock()
	p.cancels = append(p.cancels, cancel)
	p.mu.Unlock()
}

// Stop unsubscribes from every watched store.
func (p *Persister) Stop() {
	p.mu.Lock()
	cancels := p.cancels
	p.cancels = nil
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Err returns every persist failure seen so far, combined.
func (p *Persister) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Persister) onHistoryChange(c history.Change) {
	var err error
	switch c.Kind {
	case history.ChangeAdded:
		err = p.repo.InsertEntries(c.Entries)
	case history.ChangeReplaced:
		for _, e := range c.Entries {
			err = multierr.Append(err, p.repo.UpdateEntry(e))
		}
	case history.ChangeRemoved:
		ids := make([]uuid.UUID, 0, len(c.Entries))
		for _, e := range c.Entries {
			ids = append(ids, e.ID)
		}
		err = p.repo.DeleteEntries(ids)
	}
	p.record(err, logrus.Fields{
		"store":   "history",
		"change":  string(c.Kind),
		"entries": len(c.Entries),
		"version": c.Version,
	})
}

func (p *Persister) onPhotoChange(c photos.Change) {
	var err error
	switch c.Kind {
	case photos.ChangeAdded:
		err = p.repo.InsertPhoto(c.Photo)
	case photos.ChangeRemoved:
		err = multierr.Append(p.repo.DeletePhoto(c.Photo.ID), p.repo.DeleteImage(c.Photo.ImageRef))
	}
	p.record(err, logrus.Fields{
		"store":   "photos",
		"change":  string(c.Kind),
		"photo":   c.Photo.ID.String(),
		"version": c.Version,
	})
}

func (p *Persister) record(err error, fields logrus.Fields) {
	if err == nil {
		p.log.WithFields(fields).Debug("persisted change")
		return
	}
	p.log.WithFields(fields).WithError(err).Error("persist change failed")

	p.mu.Lock()
	p.err = multierr.Append(p.err, err)
	p.mu.Unlock()
}
