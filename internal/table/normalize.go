package table

import "strings"

// NormalizeName canonicalizes one column name: surrounding whitespace is
// trimmed, letters are lower-cased and every space becomes an underscore.
// NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "_")
}

// NormalizeColumns maps NormalizeName over names, preserving length and order.
func NormalizeColumns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n)
	}
	return out
}

// Normalized returns a copy of t with a canonical header. Identically named
// columns produced by normalization are collapsed, keeping the first.
func (t *Table) Normalized() *Table {
	n := &Table{Name: t.Name, Columns: NormalizeColumns(t.Columns), Rows: t.Rows}
	return n.DropDuplicateColumns()
}

// DropDuplicateColumns keeps only the first column for every repeated name.
func (t *Table) DropDuplicateColumns() *Table {
	seen := make(map[string]struct{}, len(t.Columns))
	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		keep = append(keep, i)
	}
	return t.SelectIndexes(keep)
}
