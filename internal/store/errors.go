package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedUserVersion is fatal: the PRAGMA user_version field was
// missing or not a well-formed non-negative integer.
var ErrUnexpectedUserVersion = errors.New("unexpected user_version")

// ErrUnexpectedRow is fatal for the calling operation: a query returned
// a row shape the caller did not expect.
var ErrUnexpectedRow = errors.New("unexpected row")

// ErrDatabaseClosed is returned when an operation is attempted against a
// Database whose bracket has already exited.
var ErrDatabaseClosed = errors.New("database is closed")

// ErrSchemaVersionTooNew is returned when the persisted user_version
// exceeds the highest migration this build knows how to apply.
var ErrSchemaVersionTooNew = errors.New("database schema version is newer than supported")

// UnexpectedRowError wraps ErrUnexpectedRow with the query context and the
// number of rows actually observed, per spec.md's UnexpectedRow(context, rows).
type UnexpectedRowError struct {
	Context string
	Rows    int
}

func (e *UnexpectedRowError) Error() string {
	return fmt.Sprintf("%s: unexpected row shape (%d rows)", e.Context, e.Rows)
}

func (e *UnexpectedRowError) Unwrap() error { return ErrUnexpectedRow }

func newUnexpectedRow(context string, rows int) error {
	return &UnexpectedRowError{Context: context, Rows: rows}
}

// classifyBusyOrLocked reports whether err is SQLite's transient
// SQLITE_BUSY / SQLITE_LOCKED condition — either is retried internally
// rather than surfaced to the caller — and, when matched, which of the
// two it was, so the caller can trace ConnectionBusy vs ConnectionLocked
// distinctly (spec.md §4.G).
func classifyBusyOrLocked(err error) (matched, locked bool) {
	if err == nil {
		return false, false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "sqlite_locked"), strings.Contains(msg, "database table is locked"):
		return true, true
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "sqlite_busy"):
		return true, false
	default:
		return false, false
	}
}

// isBusyOrLocked classifies a driver error as SQLite's transient
// SQLITE_BUSY / SQLITE_LOCKED condition, which the transaction runner
// retries internally rather than surfacing to the caller.
func isBusyOrLocked(err error) bool {
	matched, _ := classifyBusyOrLocked(err)
	return matched
}
