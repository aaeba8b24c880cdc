// Command grid-export renders a stored occupancy grid snapshot to a PNG.
// Unknown cells come out mid-grey, free space white, occupied black.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/gridstore"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
)

func main() {
	dbPath := flag.String("db", "grid_data.db", "grid snapshot database")
	output := flag.String("o", "grid.png", "output path")
	snapshotID := flag.Int64("id", 0, "snapshot id (0 means latest)")
	flag.Parse()

	store, err := gridstore.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *dbPath, err)
	}
	defer store.Close()

	var grid *occupancy.OccupancyGrid
	var id int64
	if *snapshotID > 0 {
		grid, id, err = store.GridSnapshotByID(*snapshotID)
	} else {
		grid, id, err = store.LatestGridSnapshot()
	}
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			v := grid.Data[y*grid.Width+x]
			var g uint8
			if v < 0 {
				g = 128 // unknown
			} else {
				g = uint8(255 - int(v)*255/100)
			}
			// rows are stored bottom-up; PNG wants top-down
			img.SetGray(x, grid.Height-1-y, color.Gray{Y: g})
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("failed to encode PNG: %v", err)
	}
	log.Printf("✓ snapshot %d (%dx%d at %.3fm/cell, frame %q) written to %s",
		id, grid.Width, grid.Height, grid.Resolution, grid.FrameID, *output)
}
