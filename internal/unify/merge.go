package unify

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// MergeStats describes what merge changed in the right operand: rows dropped
// for repeating a key pair and columns renamed to avoid a clash.
type MergeStats struct {
	RightDuplicates int
	// Renamed maps a right column name to the name it got in the result.
	Renamed map[string]string
}

// Merge full-outer-joins left and right on keys. Every key pair present in
// either operand appears exactly once in the result: left rows keep their
// order, right-only rows follow in right order. Right non-key columns whose
// name is already taken are renamed to name+suffix.
func Merge(left, right *table.Table, keys []string, suffix string) (*table.Table, error) {
	out, _, err := merge(left, right, keys, suffix)
	return out, err
}

func merge(left, right *table.Table, keys []string, suffix string) (*table.Table, MergeStats, error) {
	var st MergeStats
	if len(keys) == 0 {
		return nil, st, errors.New("merge: no key columns")
	}
	if suffix == "" {
		return nil, st, errors.New("merge: empty suffix")
	}
	if miss := left.MissingColumns(keys...); len(miss) > 0 {
		return nil, st, fmt.Errorf("merge: %s lacks key columns %v", left.Name, miss)
	}
	if miss := right.MissingColumns(keys...); len(miss) > 0 {
		return nil, st, fmt.Errorf("merge: %s lacks key columns %v", right.Name, miss)
	}

	left, _, err := left.DropDuplicateRows(keys...)
	if err != nil {
		return nil, st, err
	}
	right, st.RightDuplicates, err = right.DropDuplicateRows(keys...)
	if err != nil {
		return nil, st, err
	}

	lk := indexes(left, keys)
	rk := indexes(right, keys)
	isKey := make(map[int]bool, len(rk))
	for _, i := range rk {
		isKey[i] = true
	}

	cols := append([]string(nil), left.Columns...)
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		taken[c] = true
	}
	var rightCols []int
	for i, c := range right.Columns {
		if isKey[i] {
			continue
		}
		name := c
		if taken[name] {
			name = disambiguate(c, suffix, taken)
			if st.Renamed == nil {
				st.Renamed = map[string]string{}
			}
			st.Renamed[c] = name
		}
		taken[name] = true
		cols = append(cols, name)
		rightCols = append(rightCols, i)
	}

	byKey := make(map[string]int, len(right.Rows))
	for i, r := range right.Rows {
		byKey[table.RowKey(r, rk)] = i
	}
	matched := make([]bool, len(right.Rows))

	rows := make([][]string, 0, len(left.Rows)+len(right.Rows))
	for _, l := range left.Rows {
		row := make([]string, 0, len(cols))
		row = append(row, l...)
		ri, ok := byKey[table.RowKey(l, lk)]
		if ok {
			matched[ri] = true
		}
		for _, c := range rightCols {
			if ok {
				row = append(row, right.Rows[ri][c])
			} else {
				row = append(row, table.Missing)
			}
		}
		rows = append(rows, row)
	}
	for ri, r := range right.Rows {
		if matched[ri] {
			continue
		}
		row := make([]string, len(left.Columns), len(cols))
		for j, li := range lk {
			row[li] = r[rk[j]]
		}
		for _, c := range rightCols {
			row = append(row, r[c])
		}
		rows = append(rows, row)
	}
	return &table.Table{Name: left.Name, Columns: cols, Rows: rows}, st, nil
}

// disambiguate returns name+suffix, or name+suffix+n for the smallest n >= 2
// that is still free.
func disambiguate(name, suffix string, taken map[string]bool) string {
	cand := name + suffix
	for n := 2; taken[cand]; n++ {
		cand = name + suffix + strconv.Itoa(n)
	}
	return cand
}

func indexes(t *table.Table, names []string) []int {
	out := make([]int, len(names))
	for i, n := range names {
		out[i] = t.Index(n)
	}
	return out
}
