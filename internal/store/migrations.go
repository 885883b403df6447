package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migration is one forward-only schema revision. Version is the value
// PRAGMA user_version is set to once SQL has been applied successfully.
type migration struct {
	Version int
	SQL     string
}

// migrations returns every migration in order. The list is
// monotonically numbered and embedded at build time (spec.md §4.A).
func migrations() []migration {
	return []migration{
		{Version: 1, SQL: schemaV1},
	}
}

// currentSchemaVersion is the highest version this build knows about.
var currentSchemaVersion = migrations()[len(migrations())-1].Version

// splitStatements splits a migration script into individual statements
// on ';', dropping empty segments, per spec.md §4.A.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// readUserVersion reads PRAGMA user_version. A missing or non-integer
// value is a fatal ErrUnexpectedUserVersion (spec.md §4.A failure mode).
func readUserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedUserVersion, err)
	}
	if version < 0 {
		return 0, fmt.Errorf("%w: negative version %d", ErrUnexpectedUserVersion, version)
	}
	return version, nil
}

// runMigrations reads the persisted user_version and applies every
// migration with a greater index, in order, each inside its own write
// transaction whose first statement is the PRAGMA user_version update
// for the version it produces (spec.md §4.A). A failing statement
// aborts the whole migration; no mixed-version state is observable.
func runMigrations(ctx context.Context, db *sql.DB, tracer Tracer) error {
	if tracer == nil {
		tracer = NopTracer{}
	}
	current, err := readUserVersion(ctx, db)
	if err != nil {
		return err
	}
	tracer.Trace(evDatabaseCurrentVersion(current))

	if current > currentSchemaVersion {
		return fmt.Errorf("%w: database version %d, supported version %d",
			ErrSchemaVersionTooNew, current, currentSchemaVersion)
	}

	pending := migrations()
	ran := false
	for _, m := range pending {
		if m.Version <= current {
			continue
		}
		tracer.Trace(evDatabaseRunningMigration(current, m.Version))
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.Version, err)
		}
		current = m.Version
		ran = true
	}
	if !ran {
		tracer.Trace(evDatabaseNoMigrationNeeded())
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// PRAGMA user_version = N is embedded as the first statement, ahead
	// of the migration's own statements, so the version bump commits
	// atomically with the schema change it describes.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	for _, stmt := range splitStatements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %q: %w", stmt, err)
		}
	}

	return tx.Commit()
}

// schemaV1 is the initial schema: inputs, checkpoints, patterns,
// policies, binary_data, scripts (spec.md §3).
const schemaV1 = `
CREATE TABLE IF NOT EXISTS checkpoints (
  slot_no INTEGER PRIMARY KEY,
  header_hash BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS inputs (
  extended_output_reference BLOB PRIMARY KEY,
  address TEXT NOT NULL,
  value BLOB NOT NULL,
  datum_hash BLOB,
  script_hash BLOB,
  payment_credential TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  spent_at INTEGER,
  transaction_index INTEGER NOT NULL,
  output_index INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS policies (
  output_reference BLOB NOT NULL,
  policy_id BLOB NOT NULL,
  PRIMARY KEY (output_reference, policy_id)
);

CREATE TABLE IF NOT EXISTS binary_data (
  binary_data_hash BLOB PRIMARY KEY,
  binary_data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS scripts (
  script_hash BLOB PRIMARY KEY,
  script BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS patterns (
  pattern TEXT PRIMARY KEY
);
`
