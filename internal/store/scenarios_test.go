package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These mirror the end-to-end scenarios enumerated alongside the
// testable properties: checkpoint ordering, rollback, pruning,
// orphan binary-data cleanup, concurrent pattern inserts, and the
// rollback-to-current-tip no-op case.

func TestScenario_CheckpointHeadIsMaxSlot(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	seedCheckpoints(t, db, 0, 10, 20, 30)

	cps, err := db.ListCheckpointsDesc(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cps)
	assert.Equal(t, uint64(30), cps[0].SlotNo)
}

func TestScenario_RollbackRemovesNewerInput(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	seedCheckpoints(t, db, 10, 20)
	insertTestInput(t, db, 0x01, "addr:one", 20, nil)

	newTip, err := db.RollbackTo(ctx, 15)
	require.NoError(t, err)
	require.NotNil(t, newTip)
	assert.Equal(t, uint64(10), *newTip)

	var found bool
	err = db.FoldInputs(ctx, "addr:addr:one", FoldAny, SortAsc, func(Input) error {
		found = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, found, "rolled-back input must be gone")
}

func TestScenario_PruneInputsDeletesSpentBeforeWindow(t *testing.T) {
	db := openTestStore(t, 5)
	ctx := context.Background()

	seedCheckpoints(t, db, 30)
	spentAt := uint64(20)
	insertTestInput(t, db, 0x02, "addr:prune", 10, &spentAt)

	n, err := db.PruneInputs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestScenario_PruneBinaryDataRemovesOrphanAfterRollback(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	seedCheckpoints(t, db, 5, 10)

	bd := BinaryData{Hash: []byte{0x9}, Data: []byte("datum")}
	require.NoError(t, db.InsertBinaryData(ctx, bd))
	require.NoError(t, db.InsertInputs(ctx, []InsertInputBatch{{
		Input: Input{
			ExtendedOutputReference: []byte{0x9},
			Address:                 "addr:datum",
			Value:                   []byte{0x01},
			DatumHash:               bd.Hash,
			PaymentCredential:       "cred1test",
			CreatedAt:               10,
		},
	}}))

	_, err := db.RollbackTo(ctx, 5)
	require.NoError(t, err)

	n, err := db.PruneBinaryData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := db.GetBinaryData(ctx, bd.Hash)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScenario_ConcurrentPatternInsertsUnion(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, db.InsertPatterns(ctx, []string{"addr:a", "addr:b"}))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, db.InsertPatterns(ctx, []string{"addr:c", "addr:d"}))
	}()
	wg.Wait()

	got, err := db.ListPatterns(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"addr:a", "addr:b", "addr:c", "addr:d"}, got)
}

func TestScenario_RollbackToCurrentTipIsNoOp(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	seedCheckpoints(t, db, 10, 20, 30)

	newTip, err := db.RollbackTo(ctx, 30)
	require.NoError(t, err)
	require.NotNil(t, newTip)
	assert.Equal(t, uint64(30), *newTip)

	cps, err := db.ListCheckpointsDesc(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), cps[0].SlotNo)
}
