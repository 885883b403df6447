package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kupoindex/storecore/internal/store/pattern"
)

// InsertInputBatch is one input plus its optionally-referenced binary
// data and script, inserted together by InsertInputs (spec.md §4.F.1).
type InsertInputBatch struct {
	Input      Input
	Datum      *BinaryData      // referenced by Input.DatumHash, if any
	Script     *ScriptReference // referenced by Input.ScriptHash, if any
}

// InsertInputs inserts a batch of inputs with INSERT OR IGNORE,
// upserting each input's referenced binary_data/scripts rows along the
// way. Idempotent per extended_output_reference (spec.md §4.F.1).
func (d *Database) InsertInputs(ctx context.Context, batch []InsertInputBatch) error {
	return d.withTx(ctx, "insert_inputs", func(ctx context.Context, conn *sql.Conn) error {
		for _, b := range batch {
			if b.Datum != nil {
				if _, err := insertOrIgnore(ctx, conn, "binary_data",
					[]string{"binary_data_hash", "binary_data"}, cellsToArgs(BinaryDataToRow(*b.Datum))); err != nil {
					return err
				}
			}
			if b.Script != nil {
				if _, err := insertOrIgnore(ctx, conn, "scripts",
					[]string{"script_hash", "script"}, cellsToArgs(ScriptReferenceToRow(*b.Script))); err != nil {
					return err
				}
			}
			cols := []string{
				"extended_output_reference", "address", "value", "datum_hash",
				"script_hash", "payment_credential", "created_at", "spent_at",
				"transaction_index", "output_index",
			}
			if _, err := insertOrIgnore(ctx, conn, "inputs", cols, cellsToArgs(InputToRow(b.Input))); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteInputs deletes, for each pattern, the inputs it matches and
// returns the sum of affected rows across all patterns (spec.md §4.F.2).
func (d *Database) DeleteInputs(ctx context.Context, patterns []string) (int64, error) {
	var total int64
	err := d.withTx(ctx, "delete_inputs", func(ctx context.Context, conn *sql.Conn) error {
		for _, text := range patterns {
			p, err := pattern.Parse(text)
			if err != nil {
				return err
			}
			compiled := p.ToSQL()
			res, err := conn.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM inputs WHERE %s", compiled.Fragment), compiled.Args...)
			if err != nil {
				return fmt.Errorf("delete_inputs: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("delete_inputs rows affected: %w", err)
			}
			total += n
		}
		return nil
	})
	return total, err
}

// MarkInputs sets spent_at = slot for every input matched by patterns,
// returning the sum of affected rows (spec.md §4.F.3).
func (d *Database) MarkInputs(ctx context.Context, slot uint64, patterns []string) (int64, error) {
	var total int64
	err := d.withTx(ctx, "mark_inputs", func(ctx context.Context, conn *sql.Conn) error {
		for _, text := range patterns {
			p, err := pattern.Parse(text)
			if err != nil {
				return err
			}
			compiled := p.ToSQL()
			args := append([]any{int64(slot)}, compiled.Args...)
			res, err := conn.ExecContext(ctx,
				fmt.Sprintf("UPDATE inputs SET spent_at = ? WHERE %s", compiled.Fragment), args...)
			if err != nil {
				return fmt.Errorf("mark_inputs: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("mark_inputs rows affected: %w", err)
			}
			total += n
		}
		return nil
	})
	return total, err
}

// PruneInputs deletes inputs with spent_at < tip - k, wrapped in the
// ephemeral index bracket for inputsBySpentAt (spec.md §4.F.4).
func (d *Database) PruneInputs(ctx context.Context) (int64, error) {
	var total int64
	err := d.withTx(ctx, "prune_inputs", func(ctx context.Context, conn *sql.Conn) error {
		return withEphemeralIndexes(ctx, conn, d.tracer, []indexDef{indexByName("inputsBySpentAt")}, func() error {
			res, err := conn.ExecContext(ctx, `
				DELETE FROM inputs
				WHERE spent_at IS NOT NULL
				  AND spent_at < (SELECT MAX(slot_no) FROM checkpoints) - ?
			`, int64(d.cfg.LongestRollback))
			if err != nil {
				return fmt.Errorf("prune_inputs: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("prune_inputs rows affected: %w", err)
			}
			total = n
			return nil
		})
	})
	return total, err
}

// FoldStatus narrows FoldInputs to spent, unspent, or any inputs.
type FoldStatus int

const (
	FoldAny FoldStatus = iota
	FoldSpent
	FoldUnspent
)

// sqlName maps a FoldStatus to the status name pattern.StatusSQL
// expects, so fold_inputs compiles its status filter through the same
// status_flag_to_sql collaborator the query DSL, rather than
// reimplementing the spent/unspent/any branching inline.
func (s FoldStatus) sqlName() string {
	switch s {
	case FoldSpent:
		return "spent"
	case FoldUnspent:
		return "unspent"
	default:
		return "any"
	}
}

// FoldInputs streams rows joining inputs to checkpoints (as createdAt)
// and left-joining checkpoints again (as spentAt), narrowed by status
// and ordered by (created_at, transaction_index, output_index) in the
// chosen direction. yield is called once per row; results are never
// materialized in memory (spec.md §4.F.5, §9).
func (d *Database) FoldInputs(ctx context.Context, patternText string, status FoldStatus, dir SortDirection, yield func(Input) error) error {
	p, err := pattern.Parse(patternText)
	if err != nil {
		return err
	}
	compiled := p.ToSQL()

	statusFrag := pattern.StatusSQL(status.sqlName())

	order := "ASC"
	if dir == SortDesc {
		order = "DESC"
	}

	q := fmt.Sprintf(`
		SELECT i.extended_output_reference, i.address, i.value, i.datum_hash,
		       i.script_hash, i.payment_credential, i.created_at, i.spent_at,
		       i.transaction_index, i.output_index
		FROM inputs i
		JOIN checkpoints createdAt ON createdAt.slot_no = i.created_at
		LEFT JOIN checkpoints spentAt ON spentAt.slot_no = i.spent_at
		WHERE %s%s
		ORDER BY i.created_at %s, i.transaction_index %s, i.output_index %s
	`, compiled.Fragment, statusFrag, order, order, order)

	return d.withTx(ctx, "fold_inputs", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, q, compiled.Args...)
		if err != nil {
			return fmt.Errorf("fold_inputs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				extOutRef, value, datumHash, scriptHash []byte
				address, paymentCredential              string
				createdAt                                int64
				spentAt                                  sql.NullInt64
				txIndex, outIndex                         int64
			)
			if err := rows.Scan(&extOutRef, &address, &value, &datumHash, &scriptHash,
				&paymentCredential, &createdAt, &spentAt, &txIndex, &outIndex); err != nil {
				return newUnexpectedRow("fold_inputs", 1)
			}
			in := Input{
				ExtendedOutputReference: extOutRef,
				Address:                 address,
				Value:                   value,
				DatumHash:               datumHash,
				ScriptHash:              scriptHash,
				PaymentCredential:       paymentCredential,
				CreatedAt:               uint64(createdAt),
				TransactionIndex:        uint32(txIndex),
				OutputIndex:             uint32(outIndex),
			}
			if spentAt.Valid {
				v := uint64(spentAt.Int64)
				in.SpentAt = &v
			}
			if err := yield(in); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}
