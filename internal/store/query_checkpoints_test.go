package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, k uint64) *Database {
	t.Helper()
	ctx := context.Background()
	db, err := OpenLongLived(ctx, IsolatedMemory(), Config{LongestRollback: k}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCheckpointSampleOffsets_SmallK(t *testing.T) {
	got := checkpointSampleOffsets(5)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5}, got)
}

func TestCheckpointSampleOffsets_LargeK_IsLogarithmic(t *testing.T) {
	got := checkpointSampleOffsets(2160)
	assert.NotEmpty(t, got)
	assert.Less(t, len(got), 100, "sample ladder should stay sparse at large k")
	assert.Contains(t, got, uint64(0))
}

func TestInsertAndListCheckpointsDesc(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	var points []Checkpoint
	for i := uint64(1); i <= 30; i++ {
		points = append(points, Checkpoint{SlotNo: i, HeaderHash: []byte{byte(i)}})
	}
	require.NoError(t, db.InsertCheckpoints(ctx, points))

	got, err := db.ListCheckpointsDesc(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, uint64(30), got[0].SlotNo, "first result should be the tip")

	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].SlotNo, got[i].SlotNo, "results should be strictly descending")
	}
}

func TestListCheckpointsDesc_EmptyDatabase(t *testing.T) {
	db := openTestStore(t, 20)
	got, err := db.ListCheckpointsDesc(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertCheckpoints_IgnoresDuplicates(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	cp := Checkpoint{SlotNo: 5, HeaderHash: []byte{0xaa}}
	require.NoError(t, db.InsertCheckpoints(ctx, []Checkpoint{cp}))
	require.NoError(t, db.InsertCheckpoints(ctx, []Checkpoint{{SlotNo: 5, HeaderHash: []byte{0xbb}}}))

	got, err := db.ListCheckpointsDesc(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0xaa}, got[0].HeaderHash, "first insert wins per INSERT OR IGNORE")
}

func TestListAncestorsDesc(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	for i := uint64(1); i <= 10; i++ {
		require.NoError(t, db.InsertCheckpoints(ctx, []Checkpoint{{SlotNo: i, HeaderHash: []byte{byte(i)}}}))
	}

	got, err := db.ListAncestorsDesc(ctx, 8, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{7, 6, 5}, []uint64{got[0].SlotNo, got[1].SlotNo, got[2].SlotNo})
}
