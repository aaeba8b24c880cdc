package occupancy

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

// CompositeFrame is the merged raster of all cached slices for one render
// cycle. Pixels are row-major with row 0 at the top. Each pixel packs the
// greyscale intensity in bits 16..23 and a non-zero observed marker in bits
// 8..15 whenever any slice contributed data to that cell. OriginX/OriginY is
// the position of the world origin on the canvas, in cells.
type CompositeFrame struct {
	OriginX float64
	OriginY float64
	Width   int
	Height  int
	Pixels  []uint32
}

// At returns the packed pixel at column x, row y.
func (f *CompositeFrame) At(x, y int) uint32 {
	return f.Pixels[y*f.Width+x]
}

// ToOccupancyGrid quantizes the composite into a publishable grid at the
// given cell resolution. The composite has row 0 at the top while the grid's
// vertical axis grows upward, so rows are emitted bottom-up; the origin
// formulas anchor the grid's bottom-left cell consistently with that flip.
// A cell quantizing outside [-1,100] means the intensity encoding upstream is
// broken and panics rather than clamping.
func (f *CompositeFrame) ToOccupancyGrid(frameID string, stamp time.Time, resolution float64) *OccupancyGrid {
	grid := &OccupancyGrid{
		FrameID:    frameID,
		Stamp:      stamp,
		Resolution: resolution,
		Width:      f.Width,
		Height:     f.Height,
		Origin: transform.Rigid3{
			Translation: r3.Vec{
				X: -f.OriginX * resolution,
				Y: (-float64(f.Height) + f.OriginY) * resolution,
			},
			Rotation: transform.Identity().Rotation,
		},
		Data: make([]int8, 0, f.Width*f.Height),
	}

	for y := f.Height - 1; y >= 0; y-- {
		for x := 0; x < f.Width; x++ {
			packed := f.Pixels[y*f.Width+x]
			color := uint8(packed >> 16)
			observed := uint8(packed >> 8)
			value := -1
			if observed != 0 {
				value = int(math.Round((1. - float64(color)/255.) * 100.))
			}
			if value < -1 || value > 100 {
				panic(fmt.Sprintf("occupancy: cell value %d out of range at (%d,%d)", value, x, y))
			}
			grid.Data = append(grid.Data, int8(value))
		}
	}
	return grid
}
