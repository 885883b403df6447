package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
)

// InsertCheckpoints inserts points with INSERT OR IGNORE (spec.md §4.F.6).
func (d *Database) InsertCheckpoints(ctx context.Context, points []Checkpoint) error {
	return d.withTx(ctx, "insert_checkpoints", func(ctx context.Context, conn *sql.Conn) error {
		for _, cp := range points {
			cells := CheckpointToRow(cp)
			if _, err := insertOrIgnore(ctx, conn, "checkpoints",
				[]string{"slot_no", "header_hash"}, cellsToArgs(cells)); err != nil {
				return err
			}
		}
		return nil
	})
}

// tipSlot returns MAX(slot_no) from checkpoints, or (0, false) if the
// table is empty.
func tipSlot(ctx context.Context, conn *sql.Conn) (uint64, bool, error) {
	var tip sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT MAX(slot_no) FROM checkpoints").Scan(&tip); err != nil {
		return 0, false, fmt.Errorf("read tip: %w", err)
	}
	if !tip.Valid {
		return 0, false, nil
	}
	return uint64(tip.Int64), true, nil
}

// checkpointSampleOffsets computes the logarithmic-sample offset set
// from spec.md §4.F.7: {0, 10, 20, ..., k/2^n} ∪ {k/2^i | i = n-1..0}
// where n = ceil(log2 k). At k <= 10 the Open Questions fix collapsing
// small-k behavior by sampling every slot instead (spec.md §9).
func checkpointSampleOffsets(k uint64) []uint64 {
	if k <= 10 {
		offsets := make([]uint64, 0, k+1)
		for o := uint64(0); o <= k; o++ {
			offsets = append(offsets, o)
		}
		return offsets
	}

	n := int(math.Ceil(math.Log2(float64(k))))
	half := k / (uint64(1) << uint(n))

	seen := make(map[uint64]bool)
	var offsets []uint64
	add := func(o uint64) {
		if !seen[o] {
			seen[o] = true
			offsets = append(offsets, o)
		}
	}

	for o := uint64(0); o <= half; o += 10 {
		add(o)
	}
	for i := n - 1; i >= 0; i-- {
		add(k / (uint64(1) << uint(i)))
	}
	return offsets
}

// ListCheckpointsDesc returns a sparse, logarithmic sample of the tail:
// for each offset o in the sample ladder, the single smallest
// checkpoint with slot_no >= tip - o, deduped by slot_no and returned
// descending (spec.md §4.F.7).
func (d *Database) ListCheckpointsDesc(ctx context.Context) ([]Checkpoint, error) {
	var result []Checkpoint
	err := d.withTx(ctx, "list_checkpoints_desc", func(ctx context.Context, conn *sql.Conn) error {
		tip, ok, err := tipSlot(ctx, conn)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		offsets := checkpointSampleOffsets(d.cfg.LongestRollback)
		bySlot := make(map[uint64]Checkpoint)
		for _, o := range offsets {
			floor := int64(0)
			if int64(tip)-int64(o) > 0 {
				floor = int64(tip) - int64(o)
			}
			cp, found, err := smallestCheckpointAtLeast(ctx, conn, uint64(floor))
			if err != nil {
				return err
			}
			if found {
				bySlot[cp.SlotNo] = cp
			}
		}

		result = make([]Checkpoint, 0, len(bySlot))
		for _, cp := range bySlot {
			result = append(result, cp)
		}
		sort.Slice(result, func(i, j int) bool { return result[i].SlotNo > result[j].SlotNo })
		return nil
	})
	return result, err
}

func smallestCheckpointAtLeast(ctx context.Context, conn *sql.Conn, floor uint64) (Checkpoint, bool, error) {
	row := conn.QueryRowContext(ctx, `
		SELECT slot_no, header_hash FROM checkpoints
		WHERE slot_no >= ?
		ORDER BY slot_no ASC LIMIT 1
	`, int64(floor))
	var slotNo int64
	var headerHash []byte
	if err := row.Scan(&slotNo, &headerHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("smallest checkpoint at least %d: %w", floor, err)
	}
	return Checkpoint{SlotNo: uint64(slotNo), HeaderHash: headerHash}, true, nil
}

// ListAncestorsDesc returns up to n checkpoints strictly older than
// slot, descending by slot_no (spec.md §4.F.8).
func (d *Database) ListAncestorsDesc(ctx context.Context, slot uint64, n int) ([]Checkpoint, error) {
	var result []Checkpoint
	err := d.withTx(ctx, "list_ancestors_desc", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `
			SELECT slot_no, header_hash FROM checkpoints
			WHERE slot_no < ?
			ORDER BY slot_no DESC LIMIT ?
		`, int64(slot), n)
		if err != nil {
			return fmt.Errorf("list ancestors: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var slotNo int64
			var headerHash []byte
			if err := rows.Scan(&slotNo, &headerHash); err != nil {
				return newUnexpectedRow("list_ancestors_desc", 1)
			}
			result = append(result, Checkpoint{SlotNo: uint64(slotNo), HeaderHash: headerHash})
		}
		return rows.Err()
	})
	return result, err
}
