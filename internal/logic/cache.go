package logic

import (
	"errors"
	"sync/atomic"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

// ErrStatsUnavailable is returned before the first successful aggregation.
var ErrStatsUnavailable = errors.New("stats are still loading")

// Cache holds the current snapshot. Writers replace the whole snapshot;
// readers get a consistent view without locking.
type Cache struct {
	current atomic.Pointer[models.Snapshot]
}

func NewCache() *Cache {
	return &Cache{}
}

// Load returns the current snapshot or ErrStatsUnavailable.
func (c *Cache) Load() (*models.Snapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrStatsUnavailable
	}
	return snap, nil
}

// Ready reports whether a snapshot has been stored.
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}

// Store publishes a new snapshot. Snapshots must not be modified afterwards.
func (c *Cache) Store(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	c.current.Store(snap)
}
