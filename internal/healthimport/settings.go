// ABOUTME: Settings flows built on the coordinator: refresh and disconnect.
// ABOUTME: Both clear the imported source so a re-import never duplicates entries.
package healthimport

import (
	"context"

	"github.com/harperreed/lifetracker/internal/models"
	"github.com/sirupsen/logrus"
)

// SourceClearer removes every entry tagged with a source.
type SourceClearer interface {
	ClearEntries(src models.Source) int
}

// Source returns the source imported entries are tagged with.
func (c *Coordinator) Source() models.Source {
	return c.source
}

// Refresh clears previously imported entries and imports again. It returns
// how many entries were cleared. The import is reserved before anything is
// cleared, so nothing is cleared if it cannot start.
func (c *Coordinator) Refresh(ctx context.Context, store SourceClearer) (Result, int, error) {
	if err := c.begin(); err != nil {
		return Result{}, 0, err
	}
	cleared := store.ClearEntries(c.source)
	c.log.WithFields(logrus.Fields{"source": string(c.source), "cleared": cleared}).Info("cleared imported entries")

	return c.run(ctx), cleared, nil
}

// Disconnect removes every imported entry and returns how many were removed.
// Authorization is left to the provider.
func (c *Coordinator) Disconnect(store SourceClearer) int {
	cleared := store.ClearEntries(c.source)
	c.setStatus("Disconnected", logrus.Fields{"cleared": cleared})
	return cleared
}
