package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertBinaryData inserts a binary_data row with INSERT OR IGNORE
// (spec.md §4.F.10).
func (d *Database) InsertBinaryData(ctx context.Context, b BinaryData) error {
	return d.withTx(ctx, "insert_binary_data", func(ctx context.Context, conn *sql.Conn) error {
		_, err := insertOrIgnore(ctx, conn, "binary_data",
			[]string{"binary_data_hash", "binary_data"}, cellsToArgs(BinaryDataToRow(b)))
		return err
	})
}

// GetBinaryData looks up a binary_data row by hash, returning nil bytes
// if absent (spec.md §4.F.10).
func (d *Database) GetBinaryData(ctx context.Context, hash []byte) ([]byte, error) {
	var result []byte
	err := d.withTx(ctx, "get_binary_data", func(ctx context.Context, conn *sql.Conn) error {
		var data []byte
		row := conn.QueryRowContext(ctx, "SELECT binary_data FROM binary_data WHERE binary_data_hash = ?", hash)
		if err := row.Scan(&data); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return newUnexpectedRow("get_binary_data", 1)
		}
		result = data
		return nil
	})
	return result, err
}

// PruneBinaryData deletes binary_data rows unreferenced by any input,
// returning the number removed. The ORDER BY inputs.datum_hash clause
// is load-bearing: it steers the planner onto inputsByDatumHash and
// binary_data's primary-key index together, turning an hours-long scan
// into seconds on large datasets (spec.md §4.F.10, §9).
func (d *Database) PruneBinaryData(ctx context.Context) (int64, error) {
	var total int64
	err := d.withTx(ctx, "prune_binary_data", func(ctx context.Context, conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			DELETE FROM binary_data
			WHERE binary_data_hash IN (
				SELECT binary_data.binary_data_hash
				FROM binary_data
				LEFT JOIN inputs ON inputs.datum_hash = binary_data.binary_data_hash
				WHERE inputs.datum_hash IS NULL
				ORDER BY inputs.datum_hash
			)
		`)
		if err != nil {
			return fmt.Errorf("prune_binary_data: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("prune_binary_data rows affected: %w", err)
		}
		total = n
		return nil
	})
	return total, err
}
