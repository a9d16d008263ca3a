// ABOUTME: Tests for the refresh and disconnect flows.
// ABOUTME: Checks that re-syncing replaces imported entries and keeps manual ones.
package healthimport

import (
	"context"
	"testing"

	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshReplacesImportedEntries(t *testing.T) {
	p := newFakeProvider()
	p.samples["weight"] = samples(3, 80, UnitKilogram)
	store := history.New()
	store.AddEntry(models.NewStatEntry(models.StatWeight, 90))
	c := newAuthorized(t, p, store)

	_, err := c.Import(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, store.Count())

	res, cleared, err := c.Refresh(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 3, cleared)
	assert.Equal(t, 3, res.Added())

	src := models.SourceManual
	assert.Len(t, store.Entries(models.StatWeight, &src), 1)
	assert.Equal(t, 4, store.Count())
}

func TestRefreshNeedsAuthorization(t *testing.T) {
	p := newFakeProvider()
	store := history.New()
	store.AddEntry(models.NewStatEntry(models.StatWeight, 80).WithSource(models.SourceAppleHealth))
	c := NewCoordinator(p, store, WithLogger(quietLogger()))

	_, cleared, err := c.Refresh(context.Background(), store)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Zero(t, cleared)
	assert.Equal(t, 1, store.Count(), "nothing is cleared when the import cannot start")
}

func TestDisconnectClearsSource(t *testing.T) {
	p := newFakeProvider()
	store := history.New()
	store.AddEntries(
		models.NewStatEntry(models.StatWeight, 80).WithSource(models.SourceAppleHealth),
		models.NewStatEntry(models.StatWeight, 81),
	)
	c := NewCoordinator(p, store, WithLogger(quietLogger()))

	assert.Equal(t, models.SourceAppleHealth, c.Source())
	assert.Equal(t, 1, c.Disconnect(store))
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, "Disconnected", c.Status())
}

// racingClearer starts a competing import at the moment entries are cleared.
type racingClearer struct {
	*history.Store
	c   *Coordinator
	err error
}

func (r *racingClearer) ClearEntries(src models.Source) int {
	_, r.err = r.c.Import(context.Background())
	return r.Store.ClearEntries(src)
}

func TestRefreshReservesImportBeforeClearing(t *testing.T) {
	p := newFakeProvider()
	p.samples["weight"] = samples(2, 80, UnitKilogram)
	store := history.New()
	c := newAuthorized(t, p, store)
	_, err := c.Import(context.Background())
	require.NoError(t, err)

	clearer := &racingClearer{Store: store, c: c}
	res, cleared, err := c.Refresh(context.Background(), clearer)
	require.NoError(t, err)

	assert.ErrorIs(t, clearer.err, ErrImportInProgress, "a competing import must lose once refresh has started")
	assert.Equal(t, 2, cleared)
	assert.Equal(t, 2, res.Added())
	assert.Equal(t, 2, store.Count())
}

func TestLastSyncSurvivesRestart(t *testing.T) {
	p := newFakeProvider()
	p.samples["weight"] = samples(1, 80, UnitKilogram)
	store := history.New()

	var finished []Result
	c := NewCoordinator(p, store, WithLogger(quietLogger()), WithOnFinish(func(r Result) {
		finished = append(finished, r)
	}))
	require.NoError(t, c.RequestAuthorization(context.Background()))
	res, err := c.Import(context.Background())
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, res.Status, finished[0].Status)

	restarted := NewCoordinator(p, store, WithLogger(quietLogger()),
		WithLastSync(finished[0].FinishedAt, finished[0].Status))
	assert.Equal(t, res.FinishedAt, restarted.LastUpdate())
	assert.Equal(t, res.Status, restarted.Status())
}
