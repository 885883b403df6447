package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGetBinaryData(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()

	b := BinaryData{Hash: []byte{0xaa, 0xbb}, Data: []byte("payload")}
	require.NoError(t, db.InsertBinaryData(ctx, b))

	got, err := db.GetBinaryData(ctx, b.Hash)
	require.NoError(t, err)
	assert.Equal(t, b.Data, got)
}

func TestGetBinaryData_Missing(t *testing.T) {
	db := openTestStore(t, 20)
	got, err := db.GetBinaryData(context.Background(), []byte{0x01})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPruneBinaryData_RemovesOrphans(t *testing.T) {
	db := openTestStore(t, 20)
	ctx := context.Background()
	seedCheckpoints(t, db, 1)

	referenced := BinaryData{Hash: []byte{0x01}, Data: []byte("kept")}
	orphan := BinaryData{Hash: []byte{0x02}, Data: []byte("dropped")}
	require.NoError(t, db.InsertBinaryData(ctx, referenced))
	require.NoError(t, db.InsertBinaryData(ctx, orphan))

	require.NoError(t, db.InsertInputs(ctx, []InsertInputBatch{{
		Input: Input{
			ExtendedOutputReference: []byte{0x01},
			Address:                 "addr:one",
			Value:                   []byte{0x01},
			DatumHash:               referenced.Hash,
			PaymentCredential:       "cred1test",
			CreatedAt:               1,
		},
	}}))

	n, err := db.PruneBinaryData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := db.GetBinaryData(ctx, referenced.Hash)
	require.NoError(t, err)
	assert.Equal(t, referenced.Data, got, "referenced binary_data should survive")

	got, err = db.GetBinaryData(ctx, orphan.Hash)
	require.NoError(t, err)
	assert.Nil(t, got, "orphaned binary_data should be pruned")
}
