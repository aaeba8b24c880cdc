package paint

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

func textureFromCells(intensity, alpha []byte, w, h int, res float64) *occupancy.SliceTexture {
	return &occupancy.SliceTexture{
		Pixels:     DrawTexture(intensity, alpha, w, h),
		Width:      w,
		Height:     h,
		SlicePose:  transform.Identity(),
		Resolution: res,
		Version:    1,
	}
}

func TestDrawTextureObservedRule(t *testing.T) {
	img := DrawTexture([]byte{0, 10, 0, 200}, []byte{0, 0, 50, 255}, 2, 2)
	// observed iff intensity or alpha non-zero.
	wantObserved := []uint8{0, 255, 255, 255}
	for i, want := range wantObserved {
		if got := img.Pix[i*4+1]; got != want {
			t.Errorf("cell %d observed = %d, want %d", i, got, want)
		}
	}
	if img.Pix[1*4+0] != 10 || img.Pix[3*4+0] != 200 {
		t.Error("intensity channel not preserved")
	}
	if img.Pix[2*4+3] != 50 {
		t.Error("alpha channel not preserved")
	}
}

func TestPaintSingleSliceIdentity(t *testing.T) {
	const w, h = 4, 3
	const res = 0.05
	intensity := make([]byte, w*h)
	alpha := make([]byte, w*h)
	for i := range intensity {
		intensity[i] = byte(100 + i)
		alpha[i] = 255
	}
	slices := map[occupancy.SubmapID]occupancy.SubmapSlice{
		{TrajectoryID: 0, SubmapIndex: 0}: {Pose: transform.Identity(), Texture: textureFromCells(intensity, alpha, w, h, res)},
	}

	frame := New().PaintSlices(slices, res)
	if frame.Width != w || frame.Height != h {
		t.Fatalf("canvas %dx%d, want %dx%d", frame.Width, frame.Height, w, h)
	}
	// Identity pose with matching resolutions copies texels 1:1.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := frame.At(x, y)
			if got, want := uint8(p>>16), intensity[y*w+x]; got != want {
				t.Fatalf("pixel (%d,%d) color = %d, want %d", x, y, got, want)
			}
			if uint8(p>>8) == 0 {
				t.Fatalf("pixel (%d,%d) should be observed", x, y)
			}
		}
	}
}

func TestPaintOriginConsistentWithGridAnchor(t *testing.T) {
	const w, h = 4, 3
	const res = 0.05
	intensity := make([]byte, w*h)
	alpha := make([]byte, w*h)
	for i := range alpha {
		alpha[i] = 255
	}
	pose := transform.FromYaw(0, r3.Vec{X: 1.0, Y: 2.0})
	slices := map[occupancy.SubmapID]occupancy.SubmapSlice{
		{TrajectoryID: 0, SubmapIndex: 0}: {Pose: pose, Texture: textureFromCells(intensity, alpha, w, h, res)},
	}

	frame := New().PaintSlices(slices, res)
	grid := frame.ToOccupancyGrid("map", time.Time{}, res)

	// The grid origin is the world position of the canvas's bottom-left
	// corner: the slice spans x in [1, 1+w*res], y in [2-h*res, 2].
	if got, want := grid.Origin.Translation.X, 1.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("origin x = %v, want %v", got, want)
	}
	if got, want := grid.Origin.Translation.Y, 2.0-float64(h)*res; math.Abs(got-want) > 1e-9 {
		t.Fatalf("origin y = %v, want %v", got, want)
	}
}

func TestPaintSkipsUntexturedSlices(t *testing.T) {
	const res = 0.05
	intensity := []byte{50}
	alpha := []byte{255}
	slices := map[occupancy.SubmapID]occupancy.SubmapSlice{
		{TrajectoryID: 0, SubmapIndex: 0}: {Pose: transform.Identity(), Texture: textureFromCells(intensity, alpha, 1, 1, res)},
		{TrajectoryID: 0, SubmapIndex: 1}: {Pose: transform.Identity()}, // fetch has not succeeded yet
	}

	frame := New().PaintSlices(slices, res)
	if frame.Width != 1 || frame.Height != 1 {
		t.Fatalf("canvas %dx%d, want 1x1", frame.Width, frame.Height)
	}
}

func TestPaintNoTexturedSlices(t *testing.T) {
	slices := map[occupancy.SubmapID]occupancy.SubmapSlice{
		{TrajectoryID: 0, SubmapIndex: 0}: {Pose: transform.Identity()},
	}
	frame := New().PaintSlices(slices, 0.05)
	if frame.Width != 0 || frame.Height != 0 || len(frame.Pixels) != 0 {
		t.Fatalf("expected empty frame, got %dx%d", frame.Width, frame.Height)
	}
}

func TestPaintTwoSlicesExpandBounds(t *testing.T) {
	const res = 0.05
	mk := func() *occupancy.SliceTexture {
		return textureFromCells([]byte{50, 50, 50, 50}, []byte{255, 255, 255, 255}, 2, 2, res)
	}
	slices := map[occupancy.SubmapID]occupancy.SubmapSlice{
		{TrajectoryID: 0, SubmapIndex: 0}: {Pose: transform.Identity(), Texture: mk()},
		{TrajectoryID: 0, SubmapIndex: 1}: {Pose: transform.FromYaw(0, r3.Vec{X: 4 * res}), Texture: mk()},
	}

	frame := New().PaintSlices(slices, res)
	// Slices at x offsets 0 and 4 cells, each 2 cells wide: canvas spans 6.
	if frame.Width != 6 || frame.Height != 2 {
		t.Fatalf("canvas %dx%d, want 6x2", frame.Width, frame.Height)
	}
	observed := 0
	for _, p := range frame.Pixels {
		if uint8(p>>8) != 0 {
			observed++
		}
	}
	// Both slices contribute 4 observed cells; the 2x2 gap stays unknown.
	if observed != 8 {
		t.Fatalf("observed cells = %d, want 8", observed)
	}
}

