// Package occupancy maintains a cache of submap slices fed by submap list
// notifications and periodically composites them into a published occupancy
// grid. The cache fetches raster content only for submaps whose version
// changed; ids that disappear from a notification are purged.
package occupancy

import "fmt"

// SubmapID identifies one submap: a trajectory and the submap's index within
// that trajectory. Both are non-negative.
type SubmapID struct {
	TrajectoryID int
	SubmapIndex  int
}

// Less orders ids by trajectory first, then submap index.
func (id SubmapID) Less(o SubmapID) bool {
	if id.TrajectoryID != o.TrajectoryID {
		return id.TrajectoryID < o.TrajectoryID
	}
	return id.SubmapIndex < o.SubmapIndex
}

func (id SubmapID) String() string {
	return fmt.Sprintf("(%d,%d)", id.TrajectoryID, id.SubmapIndex)
}
