package occupancy

import (
	"context"
	"time"
)

// Painter composites a snapshot of submap slices into one canvas. Slices
// without a texture yet are skipped by the implementation.
type Painter interface {
	PaintSlices(slices map[SubmapID]SubmapSlice, resolution float64) *CompositeFrame
}

// GridSink receives each published occupancy grid. Implementations must not
// retain the grid past the call unless they treat it as read-only.
type GridSink interface {
	PublishGrid(grid *OccupancyGrid)
}

// CycleObserver is notified after each publish with cycle timings. Optional.
type CycleObserver interface {
	ObserveCycle(paint, quantize time.Duration, cells int)
}

// Node ties the slice cache, texture fetcher, painter and grid sinks
// together: notifications reconcile the cache, a periodic tick composites and
// publishes.
type Node struct {
	cache      *SliceCache
	fetcher    TextureFetcher
	painter    Painter
	sinks      []GridSink
	observer   CycleObserver
	resolution float64
	period     time.Duration
}

// NewNode creates a node publishing every period at the given cell
// resolution. Both must be strictly positive.
func NewNode(fetcher TextureFetcher, painter Painter, resolution float64, period time.Duration, sinks ...GridSink) *Node {
	if resolution <= 0 {
		panic("occupancy: resolution must be positive")
	}
	if period <= 0 {
		panic("occupancy: publish period must be positive")
	}
	return &Node{
		cache:      NewSliceCache(),
		fetcher:    fetcher,
		painter:    painter,
		sinks:      sinks,
		resolution: resolution,
		period:     period,
	}
}

// SetCycleObserver attaches an observer for per-cycle timings.
func (n *Node) SetCycleObserver(o CycleObserver) { n.observer = o }

// AddSink registers another grid sink. Not safe to call once Run has started.
func (n *Node) AddSink(sink GridSink) { n.sinks = append(n.sinks, sink) }

// Cache exposes the slice cache, mainly for tests and debug routes.
func (n *Node) Cache() *SliceCache { return n.cache }

// HandleSubmapList ingests one notification batch.
func (n *Node) HandleSubmapList(list SubmapList) {
	n.cache.ApplyUpdate(list, n.fetcher)
}

// Run publishes on every period tick until the context is cancelled.
func (n *Node) Run(ctx context.Context) {
	ticker := time.NewTicker(n.period)
	defer ticker.Stop()
	Logf("[OccupancyGrid] publishing every %s at %.3fm/cell", n.period, n.resolution)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.DrawAndPublish()
		}
	}
}

// DrawAndPublish runs one render cycle: snapshot the cache, composite, and
// publish. Nothing is published before the first notification established a
// frame id or while no submap is cached; that is a quiet skip, not an error.
// The published stamp and frame id are the snapshot's values, so consecutive
// ticks without an intervening notification republish the same stamp.
func (n *Node) DrawAndPublish() {
	slices, frameID, stamp := n.cache.Snapshot()
	if len(slices) == 0 || frameID == "" {
		metricSkippedTicks.Inc()
		return
	}

	paintStart := time.Now()
	frame := n.painter.PaintSlices(slices, n.resolution)
	paintDur := time.Since(paintStart)

	quantStart := time.Now()
	grid := frame.ToOccupancyGrid(frameID, stamp, n.resolution)
	quantDur := time.Since(quantStart)

	metricPaintDuration.Observe(paintDur.Seconds() + quantDur.Seconds())
	metricPublishes.Inc()
	if n.observer != nil {
		n.observer.ObserveCycle(paintDur, quantDur, len(grid.Data))
	}
	for _, sink := range n.sinks {
		sink.PublishGrid(grid)
	}
}
