package occupancy

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SliceCache holds the cached submap slices plus the frame id and stamp of
// the most recent notification. One mutex guards everything: a render
// snapshot never observes a half-reconciled cache.
//
// Texture fetches run while the lock is held, so a slow fetch delays both the
// rest of the batch and any pending render tick. That keeps the per-id
// ordering and at-most-one-in-flight guarantees trivially true; issuing
// fetches outside the lock and applying results under a short exclusive
// section would remove the latency coupling at the cost of tracking in-flight
// ids, and is the first thing to change if fetch latency ever matters.
type SliceCache struct {
	mu          sync.Mutex
	slices      map[SubmapID]*SubmapSlice
	lastFrameID string
	lastStamp   time.Time
}

func NewSliceCache() *SliceCache {
	return &SliceCache{slices: make(map[SubmapID]*SubmapSlice)}
}

// ApplyUpdate reconciles the cache against one notification batch. For every
// entry the pose and metadata version are upserted unconditionally; raster
// content is fetched only when missing or version-stale. Ids absent from the
// batch are deleted. Fetch failures are recoverable and leave the cached
// texture untouched; a successful fetch carrying zero textures violates the
// gateway contract and panics.
func (c *SliceCache) ApplyUpdate(list SubmapList, fetcher TextureFetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Track ids that no longer appear in the notification.
	toDelete := make(map[SubmapID]struct{}, len(c.slices))
	for id := range c.slices {
		toDelete[id] = struct{}{}
	}

	for _, entry := range list.Submaps {
		delete(toDelete, entry.ID)
		slice, ok := c.slices[entry.ID]
		if !ok {
			slice = &SubmapSlice{}
			c.slices[entry.ID] = slice
		}
		slice.Pose = entry.Pose
		slice.MetadataVersion = entry.Version
		if slice.Texture != nil && slice.Texture.Version == entry.Version {
			continue
		}

		metricFetches.Inc()
		set, err := fetcher.FetchTextures(entry.ID)
		if err != nil {
			metricFetchFailures.Inc()
			if !errors.Is(err, ErrUnavailable) {
				Logf("[SliceCache] fetch %v failed: %v", entry.ID, err)
			}
			continue
		}
		if len(set.Textures) == 0 {
			panic(fmt.Sprintf("occupancy: fetch for %v returned no textures", entry.ID))
		}

		// The first texture is by convention the highest resolution one and
		// the one used to construct the published map. Raster fields are
		// replaced as a unit so version and pixels always agree.
		tex := set.Textures[0]
		tex.Version = set.Version
		slice.Texture = &tex
	}

	for id := range toDelete {
		delete(c.slices, id)
	}

	c.lastFrameID = list.FrameID
	c.lastStamp = list.Stamp
}

// Snapshot returns a copy of all slice records plus the last notification's
// frame id and stamp. Slice values are copied; textures are shared but
// immutable once attached.
func (c *SliceCache) Snapshot() (map[SubmapID]SubmapSlice, string, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[SubmapID]SubmapSlice, len(c.slices))
	for id, s := range c.slices {
		out[id] = *s
	}
	return out, c.lastFrameID, c.lastStamp
}

// Len returns the number of cached slices.
func (c *SliceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slices)
}
