package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputRoundTrip(t *testing.T) {
	spentAt := uint64(120)
	in := Input{
		ExtendedOutputReference: []byte{0x01, 0x02},
		Address:                 "addr1test",
		Value:                   []byte{0x10},
		DatumHash:               []byte{0xaa, 0xbb},
		ScriptHash:              nil,
		PaymentCredential:       "cred1test",
		CreatedAt:               100,
		SpentAt:                 &spentAt,
		TransactionIndex:        3,
		OutputIndex:             7,
	}

	row := InputToRow(in)
	require.Len(t, row, 10)

	out, err := InputFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestInputRoundTrip_NilOptional(t *testing.T) {
	in := Input{
		ExtendedOutputReference: []byte{0x01},
		Address:                 "addr1test",
		Value:                   []byte{0x10},
		PaymentCredential:       "cred1test",
		CreatedAt:               50,
	}

	out, err := InputFromRow(InputToRow(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Nil(t, out.SpentAt)
	assert.Nil(t, out.DatumHash)
}

func TestInputFromRow_WrongArity(t *testing.T) {
	_, err := InputFromRow([]Cell{IntegerCell(1)})
	assert.Error(t, err)
}

func TestCheckpointRoundTrip(t *testing.T) {
	cp := Checkpoint{SlotNo: 42, HeaderHash: []byte{0xde, 0xad}}
	out, err := CheckpointFromRow(CheckpointToRow(cp))
	require.NoError(t, err)
	assert.Equal(t, cp, out)
}

func TestBinaryDataRoundTrip(t *testing.T) {
	b := BinaryData{Hash: []byte{1, 2, 3}, Data: []byte{4, 5, 6}}
	out, err := BinaryDataFromRow(BinaryDataToRow(b))
	require.NoError(t, err)
	assert.Equal(t, b, out)
}

func TestScriptReferenceRoundTrip(t *testing.T) {
	s := ScriptReference{ScriptHash: []byte{9, 9}, Script: []byte{1, 1, 1}}
	out, err := ScriptReferenceFromRow(ScriptReferenceToRow(s))
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestCell_WrongKindAccessors(t *testing.T) {
	c := IntegerCell(5)
	_, err := c.Blob()
	assert.Error(t, err)
	_, err = c.Text()
	assert.Error(t, err)

	v, err := c.Integer()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestNullableCells(t *testing.T) {
	assert.True(t, NullableBlobCell(nil).IsNull())
	assert.True(t, NullableBlobCell([]byte{}).IsNull())
	assert.False(t, NullableBlobCell([]byte{1}).IsNull())

	assert.True(t, NullableIntegerCell(nil).IsNull())
	v := uint64(7)
	assert.False(t, NullableIntegerCell(&v).IsNull())
}
