package gridstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
)

func TestSerializeCellsRoundTrip(t *testing.T) {
	cells := []int8{-1, 0, 50, 100, -1, 37}
	blob, err := serializeCells(cells)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	restored, err := deserializeCells(blob)
	require.NoError(t, err)
	assert.Equal(t, cells, restored)
}

func TestDeserializeCellsRejectsGarbage(t *testing.T) {
	_, err := deserializeCells(nil)
	assert.Error(t, err)

	_, err = deserializeCells([]byte("not a gzip stream"))
	assert.Error(t, err)
}

func TestInsertGridSnapshotFields(t *testing.T) {
	store := testStore(t)

	grid := &occupancy.OccupancyGrid{
		FrameID:    "map",
		Stamp:      time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Resolution: 0.05,
		Width:      3,
		Height:     2,
		Data:       []int8{-1, 0, 100, 50, -1, -1},
	}
	id, err := store.InsertGridSnapshot(grid)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	restored, gotID, err := store.GridSnapshotByID(id)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "map", restored.FrameID)
	assert.Equal(t, 3, restored.Width)
	assert.Equal(t, 2, restored.Height)
	assert.Equal(t, grid.Data, restored.Data)
	assert.True(t, restored.Stamp.Equal(grid.Stamp))

	n, err := store.SnapshotCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertNilGridIsNoop(t *testing.T) {
	store := testStore(t)
	id, err := store.InsertGridSnapshot(nil)
	require.NoError(t, err)
	assert.Zero(t, id)

	n, err := store.SnapshotCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}
