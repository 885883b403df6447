package store

import (
	"context"
	"database/sql"
	"fmt"
)

// IndexPolicy configures whether permanent indexes are installed at
// long-lived startup (spec.md §4.E).
type IndexPolicy int

const (
	// InstallIfNotExist creates the full permanent index set at startup.
	InstallIfNotExist IndexPolicy = iota
	// SkipNonEssential defers index creation for faster bulk ingest,
	// emitting a warning; bulk operations fall back to the ephemeral
	// index bracket as needed.
	SkipNonEssential
)

// indexDef names a permanent index and its definition (spec.md §4.E).
type indexDef struct {
	Name       string
	Definition string
}

var permanentIndexes = []indexDef{
	{Name: "inputsByAddress", Definition: "inputs(address COLLATE NOCASE, spent_at)"},
	{Name: "inputsByPaymentCredential", Definition: "inputs(payment_credential COLLATE NOCASE, spent_at)"},
	{Name: "inputsByDatumHash", Definition: "inputs(datum_hash)"},
	{Name: "inputsBySpentAt", Definition: "inputs(spent_at)"},
	{Name: "inputsByCreatedAt", Definition: "inputs(created_at)"},
}

// sqlExecutor is satisfied by both *sql.DB and *sql.Conn, so the index
// helpers can run either against the pool (at long-lived startup,
// before any transaction is open) or against a connection already
// checked out by withTx — never reaching back into the pool for a
// second connection while the only one allowed (MaxOpenConns(1)) is
// pinned to the caller's transaction.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// indexExists probes for name's presence via PRAGMA index_info, a
// non-empty reply implying the index exists (spec.md §4.E).
func indexExists(ctx context.Context, exec sqlExecutor, name string) (bool, error) {
	rows, err := exec.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", name))
	if err != nil {
		return false, fmt.Errorf("probe index %q: %w", name, err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

func createIndex(ctx context.Context, exec sqlExecutor, d indexDef) error {
	_, err := exec.ExecContext(ctx, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s", d.Name, d.Definition))
	if err != nil {
		return fmt.Errorf("create index %q: %w", d.Name, err)
	}
	return nil
}

func dropIndex(ctx context.Context, exec sqlExecutor, name string) error {
	_, err := exec.ExecContext(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", name))
	if err != nil {
		return fmt.Errorf("drop index %q: %w", name, err)
	}
	return nil
}

// installIndexes applies policy to the permanent index set at
// long-lived startup.
func installIndexes(ctx context.Context, exec sqlExecutor, tracer Tracer, policy IndexPolicy) error {
	if tracer == nil {
		tracer = NopTracer{}
	}
	if policy == SkipNonEssential {
		tracer.Trace(evDatabaseDeferIndexes("skipping non-essential index creation for faster bulk ingest"))
		return nil
	}
	for _, d := range permanentIndexes {
		exists, err := indexExists(ctx, exec, d.Name)
		if err != nil {
			return err
		}
		if exists {
			tracer.Trace(evDatabaseIndexAlreadyExists(d.Name))
			continue
		}
		tracer.Trace(evDatabaseCreateIndex(d.Name))
		if err := createIndex(ctx, exec, d); err != nil {
			return err
		}
	}
	return nil
}

// withEphemeralIndex implements spec.md §4.E's ephemeral index bracket:
// if the named index is missing, it is created, body runs, and it is
// dropped afterwards; if it already exists (installed permanently or
// left over from a previous bracket), body just runs. Tracing announces
// only the temporary case.
func withEphemeralIndex(ctx context.Context, exec sqlExecutor, tracer Tracer, d indexDef, body func() error) error {
	if tracer == nil {
		tracer = NopTracer{}
	}
	exists, err := indexExists(ctx, exec, d.Name)
	if err != nil {
		return err
	}
	if exists {
		return body()
	}

	tracer.Trace(evConnectionCreateTemporaryIndex(d.Name))
	if err := createIndex(ctx, exec, d); err != nil {
		return err
	}
	defer func() {
		tracer.Trace(evConnectionRemoveTemporaryIndex(d.Name))
		_ = dropIndex(ctx, exec, d.Name)
	}()

	return body()
}

// withEphemeralIndexes nests withEphemeralIndex over several indexes,
// so a bulk operation that needs more than one (e.g. rollback_to needs
// both inputsBySpentAt and inputsByCreatedAt) gets all of them bracketed
// around a single body call. exec must be the connection already
// checked out by the enclosing transaction, not the pool-level *sql.DB
// — with MaxOpenConns(1), reaching back into the pool here would block
// forever waiting for a connection the transaction itself is holding.
func withEphemeralIndexes(ctx context.Context, exec sqlExecutor, tracer Tracer, defs []indexDef, body func() error) error {
	if len(defs) == 0 {
		return body()
	}
	return withEphemeralIndex(ctx, exec, tracer, defs[0], func() error {
		return withEphemeralIndexes(ctx, exec, tracer, defs[1:], body)
	})
}

func indexByName(name string) indexDef {
	for _, d := range permanentIndexes {
		if d.Name == name {
			return d
		}
	}
	panic("store: unknown index " + name)
}
