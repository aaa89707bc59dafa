// Package unify folds normalized source tables into one table keyed by a
// composite record key.
package unify

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// ErrNoEligibleTables is returned when no source carries every key column.
var ErrNoEligibleTables = errors.New("no source table contains all key columns")

// DefaultKeys is the record key used when Options.Keys is empty.
var DefaultKeys = []string{"player", "team"}

// DefaultSeparator joins a column name to the source name when a merge has
// to rename it. Source headers may contain it too; Dedup only looks at the
// renames it is handed.
const DefaultSeparator = "#"

// UnifiedName is the name given to the folded table.
const UnifiedName = "unified"

// Options configures a fold.
type Options struct {
	Keys      []string
	Separator string
	// Order lists source names in fold order. Sources not listed follow in
	// lexicographic order. Empty means fully lexicographic.
	Order []string
	Log   logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if len(o.Keys) == 0 {
		o.Keys = DefaultKeys
	}
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Log = l
	}
	return o
}

// Exclusion records a source left out of the fold.
type Exclusion struct {
	Source      string   `json:"source"`
	MissingKeys []string `json:"missing_keys"`
}

// Result is the outcome of Unify.
type Result struct {
	Table *table.Table
	// Included lists sources in the order they were folded.
	Included []string
	Excluded []Exclusion
	// DroppedColumns lists columns removed by Dedup.
	DroppedColumns []string
	// Renamed maps each column renamed during the fold to its source name.
	Renamed map[string]string
	// DuplicateRows counts rows dropped per source for repeating a key pair.
	DuplicateRows map[string]int
}

// FoldOrder resolves the stable order in which sources are visited.
func FoldOrder(names []string, explicit []string) ([]string, error) {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	used := make(map[string]bool, len(names))
	for _, n := range explicit {
		if !present[n] {
			return nil, fmt.Errorf("fold order: unknown source %q", n)
		}
		if used[n] {
			return nil, fmt.Errorf("fold order: source %q listed twice", n)
		}
		used[n] = true
		out = append(out, n)
	}
	rest := make([]string, 0, len(names)-len(out))
	for _, n := range names {
		if !used[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...), nil
}

// Eligible splits names into sources carrying every key and those that do
// not. Order is preserved in both.
func Eligible(sources map[string]*table.Table, order []string, keys []string) ([]string, []Exclusion) {
	var in []string
	var ex []Exclusion
	for _, n := range order {
		t := sources[n]
		if miss := t.MissingColumns(keys...); len(miss) > 0 {
			ex = append(ex, Exclusion{Source: n, MissingKeys: miss})
			continue
		}
		in = append(in, n)
	}
	return in, ex
}

// Unify filters, folds and deduplicates sources.
func Unify(sources map[string]*table.Table, opt Options) (*Result, error) {
	opt = opt.withDefaults()
	log := opt.Log
	keys := table.NormalizeColumns(opt.Keys)

	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	order, err := FoldOrder(names, opt.Order)
	if err != nil {
		return nil, err
	}

	res := &Result{DuplicateRows: map[string]int{}, Renamed: map[string]string{}}
	res.Included, res.Excluded = Eligible(sources, order, keys)
	for _, e := range res.Excluded {
		log.WithFields(logrus.Fields{"source": e.Source, "missing": strings.Join(e.MissingKeys, ",")}).
			Warnf("⚠ %s skipped: missing key columns", e.Source)
	}
	if len(res.Included) == 0 {
		return nil, ErrNoEligibleTables
	}

	first := res.Included[0]
	acc, dup, err := sources[first].DropDuplicateRows(keys...)
	if err != nil {
		return nil, err
	}
	acc.Name = UnifiedName
	if dup > 0 {
		res.DuplicateRows[first] = dup
	}

	for _, n := range res.Included[1:] {
		next, st, err := merge(acc, sources[n], keys, opt.Separator+n)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", n, err)
		}
		if st.RightDuplicates > 0 {
			res.DuplicateRows[n] = st.RightDuplicates
		}
		for orig, renamed := range st.Renamed {
			res.Renamed[renamed] = orig
		}
		acc = next
		log.WithFields(logrus.Fields{"source": n, "rows": acc.NumRows(), "cols": acc.NumCols()}).
			Debugf("merged %s", n)
	}
	for n, c := range res.DuplicateRows {
		log.WithFields(logrus.Fields{"source": n, "dropped": c}).
			Warnf("⚠ %s: %d rows repeat a key pair, kept first", n, c)
	}

	res.Table, res.DroppedColumns = Dedup(acc, res.Renamed)
	if len(res.DroppedColumns) > 0 {
		log.WithField("columns", strings.Join(res.DroppedColumns, ",")).
			Debugf("dropped %d duplicate columns", len(res.DroppedColumns))
	}
	return res, nil
}

// BaseName returns the name column had in its source. renamed maps
// disambiguated names back to their originals.
func BaseName(column string, renamed map[string]string) string {
	if orig, ok := renamed[column]; ok {
		return orig
	}
	return column
}

// Dedup keeps the first column for every base name and reports the names of
// the dropped ones. A kept column that was renamed gets its base name back.
// Columns never renamed are their own base, whatever characters they hold.
func Dedup(t *table.Table, renamed map[string]string) (*table.Table, []string) {
	seen := make(map[string]bool, len(t.Columns))
	keep := make([]int, 0, len(t.Columns))
	var dropped []string
	for i, c := range t.Columns {
		b := BaseName(c, renamed)
		if seen[b] {
			dropped = append(dropped, c)
			continue
		}
		seen[b] = true
		keep = append(keep, i)
	}
	out := t.SelectIndexes(keep)
	for i, c := range out.Columns {
		out.Columns[i] = BaseName(c, renamed)
	}
	return out, dropped
}
