package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// insertOrIgnore is the small, table-name-and-arity-parameterized
// helper spec.md §9 asks for in place of type-level machinery: it
// builds "INSERT OR IGNORE INTO <table> (<cols>) VALUES (?, ...)" and
// executes it against conn.
func insertOrIgnore(ctx context.Context, conn *sql.Conn, table string, columns []string, values []any) (sql.Result, error) {
	placeholders := make([]string, len(values))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	q := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	res, err := conn.ExecContext(ctx, q, values...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	return res, nil
}

func cellsToArgs(cells []Cell) []any {
	args := make([]any, len(cells))
	for i, c := range cells {
		switch {
		case c.IsNull():
			args[i] = nil
		default:
			args[i] = cellDriverValue(c)
		}
	}
	return args
}

// cellDriverValue extracts whichever primitive a non-null Cell holds,
// for passing straight to database/sql as a bind argument.
func cellDriverValue(c Cell) any {
	if v, err := c.Integer(); err == nil {
		return v
	}
	if v, err := c.Blob(); err == nil {
		return v
	}
	if v, err := c.Text(); err == nil {
		return v
	}
	return nil
}
