package occupancy

import (
	"time"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

// OccupancyGrid is one published map. Data is row-major with the bottom row
// of the map first; each cell is -1 (unknown) or an occupancy probability in
// [0,100]. Origin is the world pose of the bottom-left cell, orientation
// identity.
type OccupancyGrid struct {
	FrameID    string           `json:"frame_id"`
	Stamp      time.Time        `json:"stamp"`
	Resolution float64          `json:"resolution"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Origin     transform.Rigid3 `json:"origin"`
	Data       []int8           `json:"data"`
}
