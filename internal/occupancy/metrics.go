package occupancy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_texture_fetches_total",
		Help: "Total number of submap texture fetch attempts",
	})

	metricFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_texture_fetch_failures_total",
		Help: "Total number of submap texture fetches that returned no content or an error",
	})

	metricPublishes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_grid_publishes_total",
		Help: "Total number of occupancy grids published",
	})

	metricSkippedTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_grid_skipped_ticks_total",
		Help: "Render ticks skipped because no submap or frame id was known yet",
	})

	metricPaintDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "occupancy_paint_duration_seconds",
		Help:    "Duration of one composite+quantize cycle in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
)
