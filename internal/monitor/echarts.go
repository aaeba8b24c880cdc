package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
)

// GridHeatmapHandler renders the latest published grid as a colored scatter
// (HTML) using go-echarts. Debugging-only endpoint to eyeball the map without
// a ROS viewer. Query params:
//   - max_points (optional; default 8000) to reduce payload size
func GridHeatmapHandler(latest func() *occupancy.OccupancyGrid) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid := latest()
		if grid == nil || len(grid.Data) == 0 {
			http.Error(w, "no grid published yet", http.StatusNotFound)
			return
		}

		maxPoints := 8000
		if mp := r.URL.Query().Get("max_points"); mp != "" {
			if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
				maxPoints = v
			}
		}

		// Downsample by stride, skipping unknown cells.
		stride := 1
		if len(grid.Data) > maxPoints {
			stride = int(math.Ceil(float64(len(grid.Data)) / float64(maxPoints)))
		}

		data := make([]opts.ScatterData, 0, len(grid.Data)/stride+1)
		for i := 0; i < len(grid.Data); i += stride {
			if grid.Data[i] < 0 {
				continue
			}
			// Data rows are bottom-up: row index is already a y coordinate.
			cellX := i % grid.Width
			cellY := i / grid.Width
			x := grid.Origin.Translation.X + (float64(cellX)+0.5)*grid.Resolution
			y := grid.Origin.Translation.Y + (float64(cellY)+0.5)*grid.Resolution
			data = append(data, opts.ScatterData{Value: []interface{}{x, y, int(grid.Data[i])}})
		}

		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Occupancy Grid", Theme: "dark", Width: "900px", Height: "900px"}),
			charts.WithTitleOpts(opts.Title{Title: "Occupancy Grid", Subtitle: fmt.Sprintf("frame=%s %dx%d stride=%d", grid.FrameID, grid.Width, grid.Height, stride)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
			charts.WithVisualMapOpts(opts.VisualMap{
				Show:       opts.Bool(true),
				Calculable: opts.Bool(true),
				Min:        0,
				Max:        100,
				Dimension:  "2",
				InRange:    &opts.VisualMapInRange{Color: []string{"#ffffff", "#9e9e9e", "#000000"}},
			}),
		)
		scatter.AddSeries("occupancy", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

		var buf bytes.Buffer
		if err := scatter.Render(&buf); err != nil {
			http.Error(w, fmt.Sprintf("failed to render chart: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

// PlotHandler serves the recorder's timing plot as a PNG.
func (r *Recorder) PlotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var buf bytes.Buffer
		if err := r.WritePlot(&buf); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}
}
