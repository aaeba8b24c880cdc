package submapclient

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/paint"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

// SyntheticFetcher generates submap textures locally so the node can run
// without a live map builder.
type SyntheticFetcher struct {
	Width      int
	Height     int
	Resolution float64
	Version    int
}

// NewSyntheticFetcher returns a fetcher producing 64x64 slices at 5cm/cell.
func NewSyntheticFetcher() *SyntheticFetcher {
	return &SyntheticFetcher{Width: 64, Height: 64, Resolution: 0.05, Version: 1}
}

// FetchTextures renders a deterministic pattern for the id: a free-space disc
// with an occupied ring, offset per trajectory so overlapping submaps remain
// distinguishable.
func (f *SyntheticFetcher) FetchTextures(id occupancy.SubmapID) (*occupancy.TextureSet, error) {
	w, h := f.Width, f.Height
	intensity := make([]byte, w*h)
	alpha := make([]byte, w*h)
	cx := float64(w)/2 + float64(id.TrajectoryID)*3
	cy := float64(h) / 2
	radius := float64(w) / 3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			i := y*w + x
			switch {
			case d < radius-2:
				intensity[i] = 255 // free
				alpha[i] = 255
			case d < radius+2:
				intensity[i] = 1 // occupied ring
				alpha[i] = 255
			}
		}
	}
	return &occupancy.TextureSet{
		Version: f.Version,
		Textures: []occupancy.SliceTexture{{
			Pixels:     paint.DrawTexture(intensity, alpha, w, h),
			Width:      w,
			Height:     h,
			SlicePose:  transform.Identity(),
			Resolution: f.Resolution,
			Version:    f.Version,
		}},
	}, nil
}

// SyntheticSubmapList builds a notification batch of count submaps spaced
// along the x axis, suitable for feeding straight into the node.
func (f *SyntheticFetcher) SyntheticSubmapList(frameID string, count int) occupancy.SubmapList {
	list := occupancy.SubmapList{FrameID: frameID, Stamp: time.Now()}
	spacing := float64(f.Width) * f.Resolution * 0.75
	for i := 0; i < count; i++ {
		list.Submaps = append(list.Submaps, occupancy.SubmapEntry{
			ID:      occupancy.SubmapID{TrajectoryID: 0, SubmapIndex: i},
			Pose:    transform.FromYaw(0, r3.Vec{X: float64(i) * spacing}),
			Version: f.Version,
		})
	}
	return list
}
