package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const busyRetryBackoff = 100 * time.Millisecond

// txFunc is the body of a transaction: a sequence of statements run
// against conn that either all succeed or are all rolled back. conn is
// a single checked-out connection already inside BEGIN/COMMIT.
type txFunc func(ctx context.Context, conn *sql.Conn) error

// runReadOnlyTx runs fn inside a BEGIN DEFERRED TRANSACTION, retrying
// the whole transaction on SQLITE_BUSY/SQLITE_LOCKED with a 100ms
// backoff (spec.md §4.D). All other errors propagate immediately.
func (d *Database) runReadOnlyTx(ctx context.Context, name string, fn txFunc) error {
	return runTxWithRetry(ctx, d.db, d.tracer, name, "BEGIN DEFERRED TRANSACTION", fn)
}

// runReadWriteTx runs fn inside a BEGIN IMMEDIATE TRANSACTION, which
// acquires the reserved lock eagerly to prevent upgrade deadlocks
// (spec.md §4.D).
func (d *Database) runReadWriteTx(ctx context.Context, name string, fn txFunc) error {
	return runTxWithRetry(ctx, d.db, d.tracer, name, "BEGIN IMMEDIATE TRANSACTION", fn)
}

func runTxWithRetry(ctx context.Context, db *sql.DB, tracer Tracer, name, beginStmt string, fn txFunc) error {
	if tracer == nil {
		tracer = NopTracer{}
	}
	queryID := uuid.New().String()
	for {
		tracer.Trace(evConnectionBeginQuery(name, queryID))
		err := runTxOnce(ctx, db, beginStmt, fn)
		tracer.Trace(evConnectionExitQuery(name, queryID))
		if err == nil {
			return nil
		}
		matched, locked := classifyBusyOrLocked(err)
		if !matched {
			return err
		}
		if locked {
			tracer.Trace(evConnectionLocked(busyRetryBackoff))
		} else {
			tracer.Trace(evConnectionBusy(busyRetryBackoff))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(busyRetryBackoff):
		}
	}
}

// runTxOnce executes one attempt of a transaction. Any statement error
// (including a failed COMMIT, which may leave the transaction in an
// ambiguous state if not rolled back) triggers ROLLBACK before the
// error is returned. No nested transactions: fn must not BEGIN again.
func runTxOnce(ctx context.Context, db *sql.DB, beginStmt string, fn txFunc) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, beginStmt); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, conn); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
