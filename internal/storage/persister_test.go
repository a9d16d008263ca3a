// ABOUTME: Tests for write-through persistence and startup restore.
// ABOUTME: Drives the stores and checks the repository mirrors every change.
package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/harperreed/lifetracker/internal/photos"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestPersisterMirrorsHistory(t *testing.T) {
	repo := NewMemoryStore()
	log, _ := test.NewNullLogger()
	p := NewPersister(repo, log)
	store := history.New()
	p.WatchHistory(store)
	defer p.Stop()

	entries := sampleEntries()
	store.AddEntries(entries...)
	store.ReplaceEntry(entries[1].WithValue(182))
	store.DeleteEntry(entries[0].ID)
	store.ClearEntries(models.SourceAppleHealth)

	got, _ := repo.LoadEntries()
	if len(got) != 1 {
		t.Fatalf("expected 1 persisted entry, got %d", len(got))
	}
	if got[0].ID != entries[1].ID || got[0].Value != 182 {
		t.Errorf("expected edited height, got %+v", got[0])
	}
	if err := p.Err(); err != nil {
		t.Errorf("unexpected persist error: %v", err)
	}
}

func TestPersisterMirrorsPhotos(t *testing.T) {
	repo := NewMemoryStore()
	p := NewPersister(repo, nil)
	ix := photos.New()
	p.WatchPhotos(ix)
	defer p.Stop()

	ref, err := repo.PutImage([]byte("img"))
	if err != nil {
		t.Fatalf("PutImage failed: %v", err)
	}
	photo := models.NewProgressPhoto(ref, models.CategoryFront)
	if err := ix.AddPhoto(photo); err != nil {
		t.Fatalf("AddPhoto failed: %v", err)
	}
	saved, _ := repo.LoadPhotos()
	if len(saved) != 1 || saved[0].ID != photo.ID {
		t.Fatalf("expected photo persisted, got %+v", saved)
	}

	ix.DeletePhoto(photo.ID)
	saved, _ = repo.LoadPhotos()
	if len(saved) != 0 {
		t.Errorf("expected photo removed, got %+v", saved)
	}
	if _, err := repo.GetImage(ref); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected image removed with its photo, got %v", err)
	}
}

type failingRepo struct {
	*MemoryStore
}

func (failingRepo) InsertEntries([]models.StatEntry) error {
	return errors.New("disk full")
}

func TestPersisterRemembersFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := NewPersister(failingRepo{NewMemoryStore()}, log)
	store := history.New()
	p.WatchHistory(store)
	defer p.Stop()

	store.AddEntry(models.NewStatEntry(models.StatWeight, 80))
	store.AddEntry(models.NewStatEntry(models.StatWeight, 81))

	if store.Count() != 2 {
		t.Errorf("store should not see storage failures, count = %d", store.Count())
	}
	if p.Err() == nil {
		t.Fatal("expected remembered error")
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Error("expected failure to be logged at error level")
	}
}

func TestStopUnsubscribes(t *testing.T) {
	repo := NewMemoryStore()
	p := NewPersister(repo, nil)
	store := history.New()
	p.WatchHistory(store)
	p.Stop()

	store.AddEntry(models.NewStatEntry(models.StatWeight, 80))
	got, _ := repo.LoadEntries()
	if len(got) != 0 {
		t.Errorf("expected nothing persisted after Stop, got %d", len(got))
	}
}

func TestRestoreSeedsStores(t *testing.T) {
	repo := setupTestDB(t)
	entries := sampleEntries()
	if err := repo.InsertEntries(entries); err != nil {
		t.Fatalf("InsertEntries failed: %v", err)
	}
	photo := models.NewProgressPhoto("ref", models.CategoryLegs).WithDate(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	if err := repo.InsertPhoto(photo); err != nil {
		t.Fatalf("InsertPhoto failed: %v", err)
	}

	store := history.New()
	ix := photos.New()
	if err := Restore(repo, store, ix); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	all := store.AllEntries()
	if len(all) != 3 || all[0].ID != entries[0].ID || all[2].ID != entries[2].ID {
		t.Errorf("expected entries restored in insertion order, got %+v", all)
	}
	if _, ok := ix.Photo(photo.ID); !ok {
		t.Error("expected photo restored")
	}

	// Watching after restore must not write the seed back.
	p := NewPersister(repo, nil)
	p.WatchHistory(store)
	defer p.Stop()
	store.AddEntry(models.NewStatEntry(models.StatWeight, 79))
	got, _ := repo.LoadEntries()
	if len(got) != 4 {
		t.Errorf("expected 4 rows, got %d", len(got))
	}
}

func TestRestoreReportsInvalidPhotos(t *testing.T) {
	repo := NewMemoryStore()
	_ = repo.InsertPhoto(models.ProgressPhoto{ID: uuid.New(), Date: time.Now()})

	var verr *photos.ValidationError
	err := Restore(repo, history.New(), photos.New())
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error, got %v", err)
	}
}
