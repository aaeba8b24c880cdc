// Package gridstore persists published occupancy grids to sqlite so map
// history survives restarts and can be inspected offline.
package gridstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	_ "modernc.org/sqlite"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
	"github.com/ROBOTIS-GIT/cartographer-ros/internal/transform"
)

type Store struct {
	*sql.DB
	path string
}

// NewStore opens (creating if needed) the grid database at path and brings
// the schema up to date.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db, path: path}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[GridStore] opened %s", path)
	return s, nil
}

// serializeCells compresses the cell array with gob encoding and gzip.
func serializeCells(cells []int8) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(cells); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeCells decompresses and decodes a cell blob.
func deserializeCells(blob []byte) ([]int8, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty cells blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var cells []int8
	if err := gob.NewDecoder(gz).Decode(&cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	return cells, nil
}

// InsertGridSnapshot persists one published grid and returns the new
// snapshot id.
func (s *Store) InsertGridSnapshot(grid *occupancy.OccupancyGrid) (int64, error) {
	if grid == nil {
		return 0, nil
	}
	blob, err := serializeCells(grid.Data)
	if err != nil {
		return 0, fmt.Errorf("serialize cells: %w", err)
	}
	stmt := `INSERT INTO grid_snapshot (frame_id, stamp_unix_nanos, resolution, width, height, origin_x, origin_y, cells_blob)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.Exec(stmt, grid.FrameID, grid.Stamp.UnixNano(), grid.Resolution,
		grid.Width, grid.Height, grid.Origin.Translation.X, grid.Origin.Translation.Y, blob)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LatestGridSnapshot restores the most recently inserted grid. Returns
// sql.ErrNoRows when the store is empty.
func (s *Store) LatestGridSnapshot() (*occupancy.OccupancyGrid, int64, error) {
	row := s.QueryRow(`SELECT snapshot_id, frame_id, stamp_unix_nanos, resolution, width, height, origin_x, origin_y, cells_blob
					   FROM grid_snapshot ORDER BY snapshot_id DESC LIMIT 1`)
	return scanSnapshot(row)
}

// GridSnapshotByID restores one grid by snapshot id.
func (s *Store) GridSnapshotByID(id int64) (*occupancy.OccupancyGrid, int64, error) {
	row := s.QueryRow(`SELECT snapshot_id, frame_id, stamp_unix_nanos, resolution, width, height, origin_x, origin_y, cells_blob
					   FROM grid_snapshot WHERE snapshot_id = ?`, id)
	return scanSnapshot(row)
}

// SnapshotCount returns the number of stored snapshots.
func (s *Store) SnapshotCount() (int, error) {
	var n int
	err := s.QueryRow(`SELECT COUNT(*) FROM grid_snapshot`).Scan(&n)
	return n, err
}

func scanSnapshot(row *sql.Row) (*occupancy.OccupancyGrid, int64, error) {
	var (
		id         int64
		frameID    string
		stampNanos int64
		resolution float64
		width      int
		height     int
		ox, oy     float64
		blob       []byte
	)
	if err := row.Scan(&id, &frameID, &stampNanos, &resolution, &width, &height, &ox, &oy, &blob); err != nil {
		return nil, 0, err
	}
	cells, err := deserializeCells(blob)
	if err != nil {
		return nil, 0, err
	}
	return &occupancy.OccupancyGrid{
		FrameID:    frameID,
		Stamp:      time.Unix(0, stampNanos).UTC(),
		Resolution: resolution,
		Width:      width,
		Height:     height,
		Origin: transform.Rigid3{
			Translation: r3.Vec{X: ox, Y: oy},
			Rotation:    transform.Identity().Rotation,
		},
		Data: cells,
	}, id, nil
}
