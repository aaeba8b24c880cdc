package gridstore

import (
	"sync"
	"time"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
)

// SnapshotSink checkpoints published grids into the store, rate-limited so a
// fast publisher does not write a row per tick. It implements
// occupancy.GridSink; write failures are logged and dropped since persistence
// is best-effort alongside the live publish path.
type SnapshotSink struct {
	store    *Store
	interval time.Duration

	mu       sync.Mutex
	lastSave time.Time
	now      func() time.Time // test hook
}

// NewSnapshotSink persists at most one grid per interval. A zero interval
// persists every publish.
func NewSnapshotSink(store *Store, interval time.Duration) *SnapshotSink {
	return &SnapshotSink{store: store, interval: interval, now: time.Now}
}

func (s *SnapshotSink) PublishGrid(grid *occupancy.OccupancyGrid) {
	s.mu.Lock()
	now := s.now()
	if !s.lastSave.IsZero() && now.Sub(s.lastSave) < s.interval {
		s.mu.Unlock()
		return
	}
	s.lastSave = now
	s.mu.Unlock()

	if _, err := s.store.InsertGridSnapshot(grid); err != nil {
		occupancy.Logf("[GridStore] failed to persist snapshot: %v", err)
	}
}
