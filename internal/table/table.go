// Package table holds the in-memory tabular model shared by every pipeline
// stage: a named header plus string rows, where an empty cell is a missing
// value.
package table

import (
	"fmt"
	"strings"
)

// Missing is the cell value used for absent metrics. Sources read "" as
// missing and the writer emits "" for it.
const Missing = ""

// Table is a named, rectangular set of string rows. Every row has exactly
// len(Columns) cells once built through New.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New builds a table, padding short rows with Missing and truncating long
// ones so the result is rectangular. Rows are copied.
func New(name string, columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(cols))
		copy(row, r)
		out = append(out, row)
	}
	return &Table{Name: name, Columns: cols, Rows: out}
}

// IsMissing reports whether v is a missing cell.
func IsMissing(v string) bool { return strings.TrimSpace(v) == Missing }

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Shape formats the table dimensions as "(rows, cols)".
func (t *Table) Shape() string { return fmt.Sprintf("(%d, %d)", t.NumRows(), t.NumCols()) }

// Index returns the position of the first column named name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every name is present in the header.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if t.Index(n) < 0 {
			return false
		}
	}
	return true
}

// MissingColumns returns the names not present in the header, in input order.
func (t *Table) MissingColumns(names ...string) []string {
	var out []string
	for _, n := range names {
		if t.Index(n) < 0 {
			out = append(out, n)
		}
	}
	return out
}

// Column returns a copy of the values of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, true
}

// SelectIndexes returns a new table holding only the given column positions,
// in the given order.
func (t *Table) SelectIndexes(idxs []int) *Table {
	cols := make([]string, len(idxs))
	for i, idx := range idxs {
		cols[i] = t.Columns[idx]
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]string, len(idxs))
		for i, idx := range idxs {
			nr[i] = row[idx]
		}
		rows[r] = nr
	}
	return &Table{Name: t.Name, Columns: cols, Rows: rows}
}

// DropDuplicateRows keeps the first row for every distinct combination of the
// given key columns. It returns the new table and the number of dropped rows.
func (t *Table) DropDuplicateRows(keys ...string) (*Table, int, error) {
	idxs := make([]int, len(keys))
	for i, k := range keys {
		idx := t.Index(k)
		if idx < 0 {
			return nil, 0, fmt.Errorf("dedup rows: key column %q not found in %s", k, t.Name)
		}
		idxs[i] = idx
	}
	seen := make(map[string]struct{}, len(t.Rows))
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	dropped := 0
	for _, r := range t.Rows {
		k := RowKey(r, idxs)
		if _, ok := seen[k]; ok {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		out.Rows = append(out.Rows, append([]string(nil), r...))
	}
	return out, dropped, nil
}

// RowKey joins the cells at idxs with a unit separator so composite keys
// compare exactly.
func RowKey(row []string, idxs []int) string {
	var b strings.Builder
	for i, idx := range idxs {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(row[idx])
	}
	return b.String()
}
