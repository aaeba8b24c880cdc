// Package monitor records per-cycle render timings and serves debug
// visualizations of the node's output.
package monitor

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// CycleSample is one render cycle's timings.
type CycleSample struct {
	Index    int
	At       time.Time
	Paint    time.Duration
	Quantize time.Duration
	Cells    int
}

// Recorder keeps a bounded history of render cycle timings. It implements
// occupancy.CycleObserver.
type Recorder struct {
	mu      sync.Mutex
	samples []CycleSample
	next    int
	limit   int
}

// NewRecorder keeps the most recent limit cycles (default 1024 when limit
// is not positive).
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 1024
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) ObserveCycle(paint, quantize time.Duration, cells int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, CycleSample{
		Index:    r.next,
		At:       time.Now(),
		Paint:    paint,
		Quantize: quantize,
		Cells:    cells,
	})
	r.next++
	if len(r.samples) > r.limit {
		r.samples = r.samples[len(r.samples)-r.limit:]
	}
}

// Samples returns a copy of the recorded history.
func (r *Recorder) Samples() []CycleSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CycleSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// WritePlot renders the paint and quantize durations per cycle as a PNG.
func (r *Recorder) WritePlot(w io.Writer) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return fmt.Errorf("no render cycles recorded yet")
	}

	p := plot.New()
	p.Title.Text = "Occupancy Grid Render Cycles"
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = "Duration (ms)"

	paintPts := make(plotter.XYs, 0, len(samples))
	quantPts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		paintPts = append(paintPts, plotter.XY{X: float64(s.Index), Y: float64(s.Paint.Microseconds()) / 1000})
		quantPts = append(quantPts, plotter.XY{X: float64(s.Index), Y: float64(s.Quantize.Microseconds()) / 1000})
	}

	paintLine, err := plotter.NewLine(paintPts)
	if err != nil {
		return err
	}
	paintLine.Width = vg.Points(1)
	quantLine, err := plotter.NewLine(quantPts)
	if err != nil {
		return err
	}
	quantLine.Width = vg.Points(1)
	quantLine.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}

	p.Add(paintLine, quantLine)
	p.Legend.Add("paint", paintLine)
	p.Legend.Add("quantize", quantLine)
	p.Legend.Top = true

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
