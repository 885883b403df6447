package store

import (
	"context"
	"database/sql"
	"errors"
)

// InsertScripts inserts script_reference rows with INSERT OR IGNORE
// (spec.md §4.F.11).
func (d *Database) InsertScripts(ctx context.Context, scripts []ScriptReference) error {
	return d.withTx(ctx, "insert_scripts", func(ctx context.Context, conn *sql.Conn) error {
		for _, s := range scripts {
			if _, err := insertOrIgnore(ctx, conn, "scripts",
				[]string{"script_hash", "script"}, cellsToArgs(ScriptReferenceToRow(s))); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetScript looks up a script by hash, returning nil bytes if absent
// (spec.md §4.F.11).
func (d *Database) GetScript(ctx context.Context, hash []byte) ([]byte, error) {
	var result []byte
	err := d.withTx(ctx, "get_script", func(ctx context.Context, conn *sql.Conn) error {
		var script []byte
		row := conn.QueryRowContext(ctx, "SELECT script FROM scripts WHERE script_hash = ?", hash)
		if err := row.Scan(&script); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return newUnexpectedRow("get_script", 1)
		}
		result = script
		return nil
	})
	return result, err
}
