package domain

// Field is one column/value pair of a row destined for the store. When Geom
// is set, Value holds a geometry-construction SQL expression that must be
// spliced into the statement verbatim rather than bound as a literal.
type Field struct {
	Column string
	Value  any
	Geom   bool
}

// Row is an ordered set of fields forming one candidate table row. Order is
// preserved so rendered statements are deterministic.
type Row []Field

// Get returns the value of the named column.
func (r Row) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Columns lists the column names in row order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// compactColumns drops untracked (empty) column references and duplicates,
// preserving order.
func compactColumns(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
