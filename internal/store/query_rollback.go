package store

import (
	"context"
	"database/sql"
	"fmt"
)

// RollbackTo rolls the store back to target_slot: deletes inputs
// created after it, un-spends inputs spent after it, and deletes
// checkpoints past it, bracketed under the ephemeral inputsBySpentAt +
// inputsByCreatedAt indexes. A request to roll back to the current tip
// is a no-op fast path. Returns the new tip, or nil if checkpoints are
// now empty (spec.md §4.F.12).
func (d *Database) RollbackTo(ctx context.Context, targetSlot uint64) (*uint64, error) {
	var newTip *uint64
	err := d.withTx(ctx, "rollback_to", func(ctx context.Context, conn *sql.Conn) error {
		tip, ok, err := tipSlot(ctx, conn)
		if err != nil {
			return err
		}
		if ok && tip == targetSlot {
			newTip = &tip
			return nil
		}

		return withEphemeralIndexes(ctx, conn, d.tracer,
			[]indexDef{indexByName("inputsBySpentAt"), indexByName("inputsByCreatedAt")},
			func() error {
				if _, err := conn.ExecContext(ctx,
					"DELETE FROM inputs WHERE created_at > ?", int64(targetSlot)); err != nil {
					return fmt.Errorf("rollback_to delete inputs: %w", err)
				}
				if _, err := conn.ExecContext(ctx,
					"UPDATE inputs SET spent_at = NULL WHERE spent_at > ?", int64(targetSlot)); err != nil {
					return fmt.Errorf("rollback_to unspend inputs: %w", err)
				}
				if _, err := conn.ExecContext(ctx,
					"DELETE FROM checkpoints WHERE slot_no > ?", int64(targetSlot)); err != nil {
					return fmt.Errorf("rollback_to delete checkpoints: %w", err)
				}
				if _, err := conn.ExecContext(ctx, "PRAGMA optimize"); err != nil {
					return fmt.Errorf("rollback_to optimize: %w", err)
				}

				newTipValue, found, err := tipSlot(ctx, conn)
				if err != nil {
					return err
				}
				if found {
					newTip = &newTipValue
				}
				return nil
			})
	})
	return newTip, err
}
