package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertListDeletePatterns(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	require.NoError(t, db.InsertPatterns(ctx, []string{"addr:one", "addr:two", "addr:one"}))

	got, err := db.ListPatterns(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"addr:one", "addr:two"}, got)

	require.NoError(t, db.DeletePattern(ctx, "addr:one"))

	got, err = db.ListPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"addr:two"}, got)
}

func TestDeletePattern_MissingIsNoOp(t *testing.T) {
	db := openTestStore(t, 20)
	require.NoError(t, db.DeletePattern(context.Background(), "addr:does-not-exist"))
}
