// Package pattern implements the pattern-to-SQL collaborator contract
// summarized in SPEC_FULL.md §6: a compact textual predicate over input
// attributes compiles to a parameterized WHERE fragment the storage
// core treats as opaque. The storage engine never embeds user-controlled
// text directly into SQL; every compiled fragment binds its literals as
// "?" placeholders (spec.md §4.F).
//
// The grammar covers exactly the attributes spec.md's data model
// exposes for filtering: address, payment credential, datum hash,
// script hash, and the wildcard "*" meaning "every input". It is not a
// general-purpose query language (spec.md §1 Non-goals).
package pattern

import (
	"fmt"
	"strings"
)

// Compiled is a WHERE fragment (without the leading "WHERE") plus its
// positional arguments, ready to append to a query string.
type Compiled struct {
	Fragment string
	Args     []any
}

// Kind identifies which attribute a pattern filters on.
type Kind int

const (
	KindWildcard Kind = iota
	KindAddress
	KindPaymentCredential
	KindDatumHash
	KindScriptHash
)

// Pattern is the parsed form of a pattern string. Use Parse to build
// one and ToSQL to compile it to a WHERE fragment; ToText/FromText
// round-trip it for persistence in the patterns table.
type Pattern struct {
	Kind  Kind
	Value string
}

// Parse compiles a textual pattern into its structured form. The
// grammar is "*" (wildcard), "addr:<address>", "cred:<credential>",
// "datum:<hex-hash>", or "script:<hex-hash>".
func Parse(text string) (Pattern, error) {
	text = strings.TrimSpace(text)
	if text == "*" || text == "" {
		return Pattern{Kind: KindWildcard}, nil
	}
	parts := strings.SplitN(text, ":", 2)
	if len(parts) != 2 {
		return Pattern{}, fmt.Errorf("pattern: malformed pattern %q", text)
	}
	prefix, value := parts[0], parts[1]
	if value == "" {
		return Pattern{}, fmt.Errorf("pattern: empty value in pattern %q", text)
	}
	switch prefix {
	case "addr":
		return Pattern{Kind: KindAddress, Value: value}, nil
	case "cred":
		return Pattern{Kind: KindPaymentCredential, Value: value}, nil
	case "datum":
		return Pattern{Kind: KindDatumHash, Value: value}, nil
	case "script":
		return Pattern{Kind: KindScriptHash, Value: value}, nil
	default:
		return Pattern{}, fmt.Errorf("pattern: unknown pattern kind %q", prefix)
	}
}

// ToText renders p back to its textual form, for persistence in the
// patterns table.
func (p Pattern) ToText() string {
	switch p.Kind {
	case KindAddress:
		return "addr:" + p.Value
	case KindPaymentCredential:
		return "cred:" + p.Value
	case KindDatumHash:
		return "datum:" + p.Value
	case KindScriptHash:
		return "script:" + p.Value
	default:
		return "*"
	}
}

// FromText is an alias of Parse, named to match the pattern_to_text /
// pattern_from_text contract pairing in spec.md §6.
func FromText(text string) (Pattern, error) { return Parse(text) }

// ToSQL compiles p to a parameterized WHERE fragment over the inputs
// table. The fragment never embeds p.Value literally; it always binds
// via "?" placeholders, so a pattern string can never be used for SQL
// injection regardless of its contents (spec.md §4.F).
func (p Pattern) ToSQL() Compiled {
	switch p.Kind {
	case KindAddress:
		return Compiled{Fragment: "address = ? COLLATE NOCASE", Args: []any{p.Value}}
	case KindPaymentCredential:
		return Compiled{Fragment: "payment_credential = ? COLLATE NOCASE", Args: []any{p.Value}}
	case KindDatumHash:
		return Compiled{Fragment: "datum_hash = ?", Args: []any{hexToBytes(p.Value)}}
	case KindScriptHash:
		return Compiled{Fragment: "script_hash = ?", Args: []any{hexToBytes(p.Value)}}
	default:
		return Compiled{Fragment: "1 = 1"}
	}
}

func hexToBytes(s string) []byte {
	b := make([]byte, len(s)/2)
	for i := range b {
		hi := hexNibble(s[i*2])
		lo := hexNibble(s[i*2+1])
		b[i] = hi<<4 | lo
	}
	return b
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// StatusSQL compiles a status filter ("spent", "unspent", or "any") to
// an AND-prefixed fragment, per spec.md §6's status_flag_to_sql.
func StatusSQL(status string) string {
	switch status {
	case "spent":
		return " AND spent_at IS NOT NULL"
	case "unspent":
		return " AND spent_at IS NULL"
	default:
		return ""
	}
}

