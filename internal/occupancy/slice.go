package occupancy

import (
	"errors"
	"image"
	"time"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

// SliceTexture is the raster content of one submap slice. All fields describe
// the same fetch result and are only ever replaced together; a cached texture
// is never mutated after it is attached to a slice.
type SliceTexture struct {
	// Pixels holds the rendered slice with intensity in R, the observed
	// marker in G and the blend weight in A. Row 0 is the top of the image.
	Pixels     *image.NRGBA
	Width      int
	Height     int
	SlicePose  transform.Rigid3
	Resolution float64
	Version    int
}

// SubmapSlice is the cached state of one submap. Pose and MetadataVersion
// track the latest notification; Texture lags behind until a fetch for the
// notified version succeeds and is nil before the first successful fetch.
type SubmapSlice struct {
	Pose            transform.Rigid3
	MetadataVersion int
	Texture         *SliceTexture
}

// SubmapEntry is one submap's row in a notification batch.
type SubmapEntry struct {
	ID      SubmapID
	Pose    transform.Rigid3
	Version int
}

// SubmapList is one notification batch: the complete set of live submaps at
// the stamped time, not an incremental diff.
type SubmapList struct {
	FrameID string
	Stamp   time.Time
	Submaps []SubmapEntry
}

// TextureSet is a successful fetch result. Textures is ordered
// highest-resolution first and is never empty; an empty set on success is a
// broken gateway and the cache treats it as fatal.
type TextureSet struct {
	Version  int
	Textures []SliceTexture
}

// ErrUnavailable reports that the gateway has no content for the requested
// submap yet. The cache keeps whatever it has and retries on the next
// notification mentioning the id.
var ErrUnavailable = errors.New("submap textures unavailable")

// TextureFetcher retrieves raster content for one submap id.
type TextureFetcher interface {
	FetchTextures(id SubmapID) (*TextureSet, error)
}
