package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertPatterns inserts pattern texts with INSERT OR IGNORE (spec.md §4.F.9).
func (d *Database) InsertPatterns(ctx context.Context, texts []string) error {
	return d.withTx(ctx, "insert_patterns", func(ctx context.Context, conn *sql.Conn) error {
		for _, text := range texts {
			if _, err := insertOrIgnore(ctx, conn, "patterns", []string{"pattern"}, []any{text}); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePattern removes a single pattern by exact text (spec.md §4.F.9).
func (d *Database) DeletePattern(ctx context.Context, text string) error {
	return d.withTx(ctx, "delete_pattern", func(ctx context.Context, conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, "DELETE FROM patterns WHERE pattern = ?", text); err != nil {
			return fmt.Errorf("delete_pattern: %w", err)
		}
		return nil
	})
}

// ListPatterns returns every stored pattern text (spec.md §4.F.9).
func (d *Database) ListPatterns(ctx context.Context) ([]string, error) {
	var result []string
	err := d.withTx(ctx, "list_patterns", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, "SELECT pattern FROM patterns")
		if err != nil {
			return fmt.Errorf("list_patterns: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var text string
			if err := rows.Scan(&text); err != nil {
				return newUnexpectedRow("list_patterns", 1)
			}
			result = append(result, text)
		}
		return rows.Err()
	})
	return result, err
}
