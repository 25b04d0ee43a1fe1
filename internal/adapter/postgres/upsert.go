package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// Upsert inserts the rows into table as one transaction. With a constraint
// name the operation is a true upsert: on conflict every non-key column is
// overwritten with the incoming value. Without one it is insert-if-absent.
// Rows carrying no data beyond their key columns are skipped. Geometry
// fields are spliced into the statement as raw expressions, never bound as
// literals. Returns the number of rows actually changed.
func (s *Store) Upsert(ctx context.Context, table string, rows []domain.Row, keyCols []string, constraint string) (int64, error) {
	stmts := make([]statement, 0, len(rows))
	for _, row := range rows {
		if len(row) <= len(keyCols) {
			continue
		}
		sql, args := buildInsert(table, row, keyCols, constraint)
		stmts = append(stmts, statement{sql: sql, args: args})
	}
	if len(stmts) == 0 {
		return 0, nil
	}
	return s.run(ctx, stmts)
}

// buildInsert renders one INSERT statement for the row. Placeholders are
// numbered over the non-geometry fields only.
func buildInsert(table string, row domain.Row, keyCols []string, constraint string) (string, []any) {
	keys := make(map[string]struct{}, len(keyCols))
	for _, k := range keyCols {
		keys[k] = struct{}{}
	}

	cols := make([]string, 0, len(row))
	values := make([]string, 0, len(row))
	var args []any
	var updates []string

	for _, f := range row {
		cols = append(cols, f.Column)
		if f.Geom {
			values = append(values, fmt.Sprint(f.Value))
		} else {
			args = append(args, f.Value)
			values = append(values, "$"+strconv.Itoa(len(args)))
		}
		if _, isKey := keys[f.Column]; !isKey {
			updates = append(updates, fmt.Sprintf("%s=EXCLUDED.%s", f.Column, f.Column))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ","), strings.Join(values, ","))
	if constraint != "" {
		fmt.Fprintf(&b, " ON CONFLICT ON CONSTRAINT %s DO UPDATE SET %s",
			constraint, strings.Join(updates, ","))
	} else {
		b.WriteString(" ON CONFLICT DO NOTHING")
	}
	return b.String(), args
}

// RenderStatement substitutes bind arguments into the statement as SQL
// literals for dry-run display. Placeholders are replaced highest-numbered
// first so $1 does not clobber $10.
func RenderStatement(sql string, args []any) string {
	for i := len(args) - 1; i >= 0; i-- {
		sql = strings.ReplaceAll(sql, "$"+strconv.Itoa(i+1), renderLiteral(args[i]))
	}
	return sql
}

func renderLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(t)
	case time.Time:
		return quoteString(t.Format(time.DateOnly))
	case pgtype.Date:
		if !t.Valid {
			return "NULL"
		}
		return quoteString(t.Time.Format(time.DateOnly))
	case []string:
		parts := make([]string, len(t))
		for i, s := range t {
			parts[i] = quoteString(s)
		}
		return "ARRAY[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprint(t)
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
