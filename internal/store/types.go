package store

// Input is a single unspent-transaction-output-like record.
//
// CreatedAt must reference a known checkpoint by slot. SpentAt, when
// present, is >= CreatedAt and <= the current tip.
type Input struct {
	ExtendedOutputReference []byte
	Address                 string
	Value                   []byte
	DatumHash               []byte
	ScriptHash              []byte
	PaymentCredential       string
	CreatedAt               uint64
	SpentAt                 *uint64
	TransactionIndex        uint32
	OutputIndex             uint32
}

// Checkpoint marks a point in the ingested chain.
type Checkpoint struct {
	SlotNo     uint64
	HeaderHash []byte
}

// Pattern is a compact textual predicate over input attributes.
type Pattern struct {
	Text string
}

// Policy is a many-to-one link from an output reference to a policy ID.
type Policy struct {
	OutputReference []byte
	PolicyID        []byte
}

// BinaryData holds a content-addressed blob referenced by datum hash.
type BinaryData struct {
	Hash []byte
	Data []byte
}

// ScriptReference holds a content-addressed script body.
type ScriptReference struct {
	ScriptHash []byte
	Script     []byte
}

// StatusFlag names the spent, unspent, or any input filters. FoldInputs
// does not take this type; it takes the equivalent FoldStatus.
type StatusFlag int

const (
	StatusAny StatusFlag = iota
	StatusSpent
	StatusUnspent
)

// SortDirection controls the ordering of a fold_inputs scan.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)
