package store

import "fmt"

// Cell is a primitive storage cell: one of Integer, Blob, Text, or Null.
// It mirrors the tuple of primitive values a row maps to/from at the
// persistence boundary (the domain codec contract of SPEC_FULL.md §6).
type Cell struct {
	kind cellKind
	i    int64
	b    []byte
	s    string
}

type cellKind int

const (
	cellNull cellKind = iota
	cellInteger
	cellBlob
	cellText
)

func IntegerCell(v int64) Cell { return Cell{kind: cellInteger, i: v} }
func BlobCell(v []byte) Cell   { return Cell{kind: cellBlob, b: v} }
func TextCell(v string) Cell   { return Cell{kind: cellText, s: v} }
func NullCell() Cell           { return Cell{kind: cellNull} }
func (c Cell) IsNull() bool    { return c.kind == cellNull }

func (c Cell) Integer() (int64, error) {
	if c.kind != cellInteger {
		return 0, fmt.Errorf("cell is not an integer")
	}
	return c.i, nil
}

func (c Cell) Blob() ([]byte, error) {
	if c.kind != cellBlob {
		return nil, fmt.Errorf("cell is not a blob")
	}
	return c.b, nil
}

func (c Cell) Text() (string, error) {
	if c.kind != cellText {
		return "", fmt.Errorf("cell is not text")
	}
	return c.s, nil
}

// NullableBlobCell returns a Blob cell, or Null when v is empty.
func NullableBlobCell(v []byte) Cell {
	if len(v) == 0 {
		return NullCell()
	}
	return BlobCell(v)
}

// NullableIntegerCell returns an Integer cell, or Null when v is nil.
func NullableIntegerCell(v *uint64) Cell {
	if v == nil {
		return NullCell()
	}
	return IntegerCell(int64(*v))
}

// InputToRow implements the to_row half of the domain codec contract for
// Input, in extended_output_reference-leading column order matching the
// inputs table schema.
func InputToRow(in Input) []Cell {
	return []Cell{
		BlobCell(in.ExtendedOutputReference),
		TextCell(in.Address),
		BlobCell(in.Value),
		NullableBlobCell(in.DatumHash),
		NullableBlobCell(in.ScriptHash),
		TextCell(in.PaymentCredential),
		IntegerCell(int64(in.CreatedAt)),
		NullableIntegerCell(in.SpentAt),
		IntegerCell(int64(in.TransactionIndex)),
		IntegerCell(int64(in.OutputIndex)),
	}
}

// InputFromRow implements the from_row half of the domain codec contract
// for Input. The round trip InputFromRow(InputToRow(x)) == x is a
// testable property (SPEC_FULL.md §8).
func InputFromRow(row []Cell) (Input, error) {
	if len(row) != 10 {
		return Input{}, fmt.Errorf("input row: expected 10 cells, got %d", len(row))
	}
	var in Input
	var err error
	if in.ExtendedOutputReference, err = row[0].Blob(); err != nil {
		return Input{}, err
	}
	if in.Address, err = row[1].Text(); err != nil {
		return Input{}, err
	}
	if in.Value, err = row[2].Blob(); err != nil {
		return Input{}, err
	}
	if !row[3].IsNull() {
		if in.DatumHash, err = row[3].Blob(); err != nil {
			return Input{}, err
		}
	}
	if !row[4].IsNull() {
		if in.ScriptHash, err = row[4].Blob(); err != nil {
			return Input{}, err
		}
	}
	if in.PaymentCredential, err = row[5].Text(); err != nil {
		return Input{}, err
	}
	createdAt, err := row[6].Integer()
	if err != nil {
		return Input{}, err
	}
	in.CreatedAt = uint64(createdAt)
	if !row[7].IsNull() {
		spentAt, err := row[7].Integer()
		if err != nil {
			return Input{}, err
		}
		v := uint64(spentAt)
		in.SpentAt = &v
	}
	txIdx, err := row[8].Integer()
	if err != nil {
		return Input{}, err
	}
	in.TransactionIndex = uint32(txIdx)
	outIdx, err := row[9].Integer()
	if err != nil {
		return Input{}, err
	}
	in.OutputIndex = uint32(outIdx)
	return in, nil
}

// CheckpointToRow implements to_row for Checkpoint.
func CheckpointToRow(cp Checkpoint) []Cell {
	return []Cell{
		IntegerCell(int64(cp.SlotNo)),
		BlobCell(cp.HeaderHash),
	}
}

// CheckpointFromRow implements from_row for Checkpoint.
func CheckpointFromRow(row []Cell) (Checkpoint, error) {
	if len(row) != 2 {
		return Checkpoint{}, fmt.Errorf("checkpoint row: expected 2 cells, got %d", len(row))
	}
	slot, err := row[0].Integer()
	if err != nil {
		return Checkpoint{}, err
	}
	hash, err := row[1].Blob()
	if err != nil {
		return Checkpoint{}, err
	}
	return Checkpoint{SlotNo: uint64(slot), HeaderHash: hash}, nil
}

// BinaryDataToRow implements to_row for BinaryData.
func BinaryDataToRow(b BinaryData) []Cell {
	return []Cell{BlobCell(b.Hash), BlobCell(b.Data)}
}

// BinaryDataFromRow implements from_row for BinaryData.
func BinaryDataFromRow(row []Cell) (BinaryData, error) {
	if len(row) != 2 {
		return BinaryData{}, fmt.Errorf("binary_data row: expected 2 cells, got %d", len(row))
	}
	hash, err := row[0].Blob()
	if err != nil {
		return BinaryData{}, err
	}
	data, err := row[1].Blob()
	if err != nil {
		return BinaryData{}, err
	}
	return BinaryData{Hash: hash, Data: data}, nil
}

// ScriptReferenceToRow implements to_row for ScriptReference.
func ScriptReferenceToRow(s ScriptReference) []Cell {
	return []Cell{BlobCell(s.ScriptHash), BlobCell(s.Script)}
}

// ScriptReferenceFromRow implements from_row for ScriptReference.
func ScriptReferenceFromRow(row []Cell) (ScriptReference, error) {
	if len(row) != 2 {
		return ScriptReference{}, fmt.Errorf("script row: expected 2 cells, got %d", len(row))
	}
	hash, err := row[0].Blob()
	if err != nil {
		return ScriptReference{}, err
	}
	script, err := row[1].Blob()
	if err != nil {
		return ScriptReference{}, err
	}
	return ScriptReference{ScriptHash: hash, Script: script}, nil
}
