// ABOUTME: Tests for HistoryStore insert, filtered query, and source-scoped clear.
// ABOUTME: Also covers change events, version counter, and concurrent writers.
package history

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
)

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func entry(t models.StatType, v float64, src models.Source, day int) models.StatEntry {
	return models.NewStatEntry(t, v).WithSource(src).WithDate(base.AddDate(0, 0, day))
}

func srcPtr(s models.Source) *models.Source {
	return &s
}

func TestEntriesFiltersByTypeAndSource(t *testing.T) {
	s := New()

	w1 := entry(models.StatWeight, 80, models.SourceManual, 0)
	w2 := entry(models.StatWeight, 81, models.SourceAppleHealth, 1)
	h1 := entry(models.StatHeight, 180, models.SourceAppleHealth, 2)
	w3 := entry(models.StatWeight, 79, models.SourceManual, -5)

	s.AddEntry(w1)
	s.AddEntry(w2)
	s.AddEntry(h1)
	s.AddEntry(w3)

	all := s.Entries(models.StatWeight, nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 weight entries, got %d", len(all))
	}
	// Insertion order, not date order.
	if all[0].ID != w1.ID || all[1].ID != w2.ID || all[2].ID != w3.ID {
		t.Errorf("entries not in insertion order: %v", all)
	}

	manual := s.Entries(models.StatWeight, srcPtr(models.SourceManual))
	if len(manual) != 2 || manual[0].ID != w1.ID || manual[1].ID != w3.ID {
		t.Errorf("unexpected manual weight entries: %v", manual)
	}

	if got := s.Entries(models.StatBodyFat, nil); len(got) != 0 {
		t.Errorf("expected no body fat entries, got %d", len(got))
	}
}

func TestAddEntryDoesNotDeduplicate(t *testing.T) {
	s := New()
	e := entry(models.StatWeight, 80, models.SourceAppleHealth, 0)
	dup := e
	dup.ID = uuid.New()

	s.AddEntry(e)
	s.AddEntry(dup)

	if got := s.Entries(models.StatWeight, nil); len(got) != 2 {
		t.Errorf("expected identical entries to coexist, got %d", len(got))
	}
}

func TestClearEntriesIsSourceScoped(t *testing.T) {
	s := New()
	s.AddEntries(
		entry(models.StatWeight, 80, models.SourceManual, 0),
		entry(models.StatWeight, 81, models.SourceAppleHealth, 1),
		entry(models.StatHeight, 180, models.SourceAppleHealth, 1),
		entry(models.StatBodyFat, 20, models.SourceManual, 2),
	)

	removed := s.ClearEntries(models.SourceAppleHealth)
	if removed != 2 {
		t.Errorf("ClearEntries removed %d, want 2", removed)
	}

	for _, e := range s.AllEntries() {
		if e.Source == models.SourceAppleHealth {
			t.Errorf("entry from cleared source survived: %+v", e)
		}
	}
	if s.Count() != 2 {
		t.Errorf("expected 2 manual entries left, got %d", s.Count())
	}
}

func TestClearEntriesEmptySourceIsNoop(t *testing.T) {
	s := New()
	s.AddEntry(entry(models.StatWeight, 80, models.SourceManual, 0))
	before := s.Version()

	if n := s.ClearEntries(models.SourceAppleHealth); n != 0 {
		t.Errorf("expected 0 removed, got %d", n)
	}
	if s.Version() != before {
		t.Error("expected no-op clear to leave version unchanged")
	}
	if s.Count() != 1 {
		t.Error("expected manual entry to be untouched")
	}
}

func TestReplaceAndDeleteEntry(t *testing.T) {
	s := New()
	a := entry(models.StatWeight, 80, models.SourceManual, 0)
	b := entry(models.StatWeight, 81, models.SourceManual, 1)
	s.AddEntries(a, b)

	if !s.ReplaceEntry(a.WithValue(78.5)) {
		t.Fatal("expected ReplaceEntry to find entry")
	}
	got := s.AllEntries()
	if got[0].ID != a.ID || got[0].Value != 78.5 {
		t.Errorf("replace did not keep position or value: %+v", got[0])
	}

	if s.ReplaceEntry(models.NewStatEntry(models.StatWeight, 1)) {
		t.Error("expected ReplaceEntry of unknown ID to report false")
	}

	if !s.DeleteEntry(a.ID) {
		t.Fatal("expected DeleteEntry to find entry")
	}
	if _, ok := s.Entry(a.ID); ok {
		t.Error("deleted entry still retrievable")
	}
	if s.DeleteEntry(a.ID) {
		t.Error("expected second delete to report false")
	}
}

func TestLatest(t *testing.T) {
	s := New()
	if _, ok := s.Latest(models.StatWeight); ok {
		t.Error("expected no latest on empty store")
	}

	old := entry(models.StatWeight, 80, models.SourceManual, 0)
	newest := entry(models.StatWeight, 82, models.SourceManual, 3)
	tie := entry(models.StatWeight, 83, models.SourceAppleHealth, 3)
	s.AddEntries(old, newest, tie, entry(models.StatHeight, 180, models.SourceManual, 9))

	got, ok := s.Latest(models.StatWeight)
	if !ok || got.ID != tie.ID {
		t.Errorf("Latest = %+v, want the later-inserted tie", got)
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := New()
	var got []Change
	cancel := s.Subscribe(func(c Change) {
		got = append(got, c)
	})

	a := entry(models.StatWeight, 80, models.SourceAppleHealth, 0)
	s.AddEntries(a, entry(models.StatHeight, 180, models.SourceAppleHealth, 0))
	s.ReplaceEntry(a.WithValue(81))
	s.ClearEntries(models.SourceAppleHealth)

	if len(got) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(got))
	}
	wantKinds := []ChangeKind{ChangeAdded, ChangeReplaced, ChangeRemoved}
	for i, c := range got {
		if c.Kind != wantKinds[i] {
			t.Errorf("change %d kind = %s, want %s", i, c.Kind, wantKinds[i])
		}
		if c.Version != uint64(i+1) {
			t.Errorf("change %d version = %d, want %d", i, c.Version, i+1)
		}
	}
	if len(got[0].Entries) != 2 || len(got[2].Entries) != 2 {
		t.Error("expected batch add and clear to carry both entries")
	}

	cancel()
	s.AddEntry(a)
	if len(got) != 3 {
		t.Error("expected no delivery after cancel")
	}
	if s.Version() != 4 {
		t.Errorf("Version = %d, want 4", s.Version())
	}
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := New()
	var counts []int
	s.Subscribe(func(Change) {
		counts = append(counts, s.Count())
	})
	s.AddEntry(entry(models.StatWeight, 80, models.SourceManual, 0))
	s.AddEntry(entry(models.StatWeight, 81, models.SourceManual, 0))

	if len(counts) != 2 || counts[0] != 1 || counts[1] != 2 {
		t.Errorf("subscriber saw counts %v", counts)
	}
}

func TestSubscriberReadsDuringConcurrentWrites(t *testing.T) {
	s := New()
	var mu sync.Mutex
	var counts []int
	s.Subscribe(func(Change) {
		// Give the other writers time to queue up behind this delivery.
		time.Sleep(time.Millisecond)
		n := s.Count()
		mu.Lock()
		counts = append(counts, n)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s.AddEntry(entry(models.StatWeight, float64(i), models.SourceManual, i))
			}(i)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("writers blocked while a subscriber was reading")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(counts) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(counts))
	}
	for i, n := range counts {
		if n != i+1 {
			t.Errorf("delivery %d saw count %d, want %d", i, n, i+1)
		}
	}
}

func TestConcurrentWritersKeepOrderedVersions(t *testing.T) {
	s := New()
	var mu sync.Mutex
	var versions []uint64
	s.Subscribe(func(c Change) {
		mu.Lock()
		versions = append(versions, c.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddEntry(entry(models.StatWeight, float64(i), models.SourceManual, i))
		}(i)
	}
	wg.Wait()

	if s.Count() != 50 {
		t.Fatalf("Count = %d, want 50", s.Count())
	}
	for i, v := range versions {
		if v != uint64(i+1) {
			t.Fatalf("delivery %d had version %d; deliveries out of order", i, v)
		}
	}
}

func TestSortedByDate(t *testing.T) {
	a := entry(models.StatWeight, 1, models.SourceManual, 2)
	b := entry(models.StatWeight, 2, models.SourceManual, 0)
	c := entry(models.StatWeight, 3, models.SourceManual, 1)
	in := []models.StatEntry{a, b, c}

	asc := SortedByDate(in, false)
	if asc[0].ID != b.ID || asc[1].ID != c.ID || asc[2].ID != a.ID {
		t.Errorf("ascending order wrong: %v", asc)
	}
	desc := SortedByDate(in, true)
	if desc[0].ID != a.ID || desc[2].ID != b.ID {
		t.Errorf("descending order wrong: %v", desc)
	}
	if in[0].ID != a.ID {
		t.Error("SortedByDate modified its input")
	}
}

func TestFindByPrefix(t *testing.T) {
	s := New()
	a := entry(models.StatWeight, 1, models.SourceManual, 0)
	a.ID = uuid.MustParse("aaaa1111-0000-4000-8000-000000000001")
	b := entry(models.StatWeight, 2, models.SourceManual, 0)
	b.ID = uuid.MustParse("aaaa2222-0000-4000-8000-000000000002")
	s.AddEntries(a, b)

	got, err := s.Find("aaaa1")
	if err != nil || got.ID != a.ID {
		t.Errorf("Find(aaaa1) = %v, %v", got.ID, err)
	}
	if _, err := s.Find(b.ID.String()); err != nil {
		t.Errorf("Find(full id) failed: %v", err)
	}
	if _, err := s.Find("aaaa"); !errors.Is(err, models.ErrAmbiguousID) {
		t.Errorf("expected ErrAmbiguousID, got %v", err)
	}
	if _, err := s.Find("ffff"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
