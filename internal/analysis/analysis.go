// Package analysis profiles tables: inferred column kinds, numeric moments,
// robust outliers, group summaries and pairwise correlations.
package analysis

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pitchloom/internal/parser"
	"github.com/KaramelBytes/pitchloom/internal/table"
)

// Column kinds reported in ColumnSummary.Kind.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindUnknown     = "unknown"
)

const (
	maxCategories   = 10000
	maxCategoryLen  = 64
	topValuesShown  = 8
	maxGroups       = 20
	maxGroupPairs   = 10
	minOutlierCount = 8
)

// Options controls analysis behavior.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// CorrPerGroup computes correlations per group key.
	CorrPerGroup bool
	// DecimalSeparator and ThousandsSeparator fix the number format. Zero
	// means auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Outliers counts values whose robust Z-score (MAD) exceeds
	// OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for player tables.
func DefaultOptions() Options {
	return Options{
		MaxRows:          100000,
		SampleRows:       5,
		Correlations:     true,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a table.
type Report struct {
	Name      string
	Rows      int
	Processed int
	Cols      []ColumnSummary
	Samples   [][]string
	Warnings  []string
	Groups    []GroupResult
	Corr      *CorrMatrix
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string
	Unit    string
	NonNull int
	Missing int
	Unique  int

	Min  float64
	Max  float64
	Mean float64
	Std  float64

	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64

	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key       string
	Size      int
	Metrics   map[string]NumSummary
	CorrPairs []PairCorr
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// AnalyzeFile parses any supported tabular file and profiles it.
func AnalyzeFile(path string, opt Options) (*Report, error) {
	t, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	rep := AnalyzeTable(t, opt)
	rep.Name = filepath.Base(path)
	return rep, nil
}

type colAcc struct {
	name   string
	unit   string
	nonNil int
	miss   int
	nums   []float64
	dtCnt  int
	txtCnt int
	cats   map[string]int
	exText []string
}

// AnalyzeTable profiles t. Cells are classified one at a time: numbers
// first, then dates, then free text.
func AnalyzeTable(t *table.Table, opt Options) *Report {
	rep := &Report{Name: t.Name, Rows: t.NumRows()}
	if t.NumCols() == 0 {
		return rep
	}
	rows := t.Rows
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", opt.MaxRows, rep.Rows))
	}
	rep.Processed = len(rows)
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	for i := 0; i < len(rows) && i < sampleRows; i++ {
		rep.Samples = append(rep.Samples, append([]string(nil), rows[i]...))
	}

	accs := make([]*colAcc, t.NumCols())
	// values[j][i] is NaN unless row i of column j parsed as a number.
	values := make([][]float64, t.NumCols())
	for j, name := range t.Columns {
		clean, unit := splitUnits(name)
		c := &colAcc{name: clean, unit: unit, cats: map[string]int{}}
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = math.NaN()
			v := strings.TrimSpace(r[j])
			if v == "" {
				c.miss++
				continue
			}
			c.nonNil++
			if strings.Contains(v, "%") && c.unit == "" {
				c.unit = "%"
			}
			if x, ok := ParseNumber(v, opt); ok {
				c.nums = append(c.nums, x)
				vals[i] = x
				continue
			}
			if _, ok := parseTimeMaybe(v); ok {
				c.dtCnt++
				continue
			}
			c.txtCnt++
			if len(c.cats) <= maxCategories && len(v) <= maxCategoryLen {
				c.cats[v]++
			}
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
		accs[j] = c
		values[j] = vals
	}

	var numCols []int
	rep.Cols = make([]ColumnSummary, 0, len(accs))
	for j, c := range accs {
		s := c.summary(opt)
		if s.Kind == KindNumeric {
			numCols = append(numCols, j)
		}
		rep.Cols = append(rep.Cols, s)
	}

	names := func(idx int) string { return accs[idx].name }
	if len(opt.GroupBy) > 0 {
		rep.Groups = groupBy(t.Columns, rows, opt, values, numCols, names)
	}
	if opt.Correlations && len(numCols) >= 2 {
		rep.Corr = correlationMatrix(values, numCols, nil, names)
	}
	return rep
}

func (c *colAcc) summary(opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.name, Unit: c.unit, NonNull: c.nonNil, Missing: c.miss, Kind: KindUnknown}
	numCnt := len(c.nums)
	switch {
	case numCnt > 0 && numCnt >= c.dtCnt && numCnt >= c.txtCnt:
		s.Kind = KindNumeric
		s.Min = floats.Min(c.nums)
		s.Max = floats.Max(c.nums)
		if numCnt > 1 {
			s.Mean, s.Std = stat.MeanStdDev(c.nums, nil)
		} else {
			s.Mean = c.nums[0]
		}
		if opt.Outliers && numCnt >= minOutlierCount {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutlierThreshold = thr
			s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(c.nums, thr)
		}
	case c.dtCnt > 0 && c.dtCnt >= c.txtCnt:
		s.Kind = KindDatetime
	case len(c.cats) > 0:
		s.Kind = KindCategorical
		s.TopValues = topCategories(c.cats, topValuesShown)
		s.Unique = len(c.cats)
	case c.txtCnt > 0:
		s.Kind = KindText
		s.ExampleTexts = c.exText
	}
	return s
}

func topCategories(cats map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// robustOutliers counts |z| > thr where z = 0.6745 (x - median) / MAD.
func robustOutliers(vals []float64, thr float64) (int, float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	var cnt int
	var maxAbs float64
	for _, v := range vals {
		z := math.Abs(0.6745 * (v - median) / mad)
		if z > thr {
			cnt++
		}
		if z > maxAbs {
			maxAbs = z
		}
	}
	return cnt, maxAbs
}

func groupBy(header []string, rows [][]string, opt Options, values [][]float64, numCols []int, name func(int) string) []GroupResult {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		clean, _ := splitUnits(h)
		k := strings.ToLower(clean)
		if _, ok := lookup[k]; !ok {
			lookup[k] = i
		}
	}
	var gIdx []int
	for _, g := range opt.GroupBy {
		if idx, ok := lookup[strings.ToLower(strings.TrimSpace(g))]; ok {
			gIdx = append(gIdx, idx)
		}
	}
	if len(gIdx) == 0 {
		return nil
	}

	members := map[string][]int{}
	for i, r := range rows {
		parts := make([]string, len(gIdx))
		for p, idx := range gIdx {
			parts[p] = fmt.Sprintf("%s=%s", name(idx), safeVal(strings.TrimSpace(r[idx])))
		}
		key := strings.Join(parts, " | ")
		members[key] = append(members[key], i)
	}

	out := make([]GroupResult, 0, len(members))
	for key, idxs := range members {
		gr := GroupResult{Key: key, Size: len(idxs), Metrics: map[string]NumSummary{}}
		for _, j := range numCols {
			var xs []float64
			for _, i := range idxs {
				if v := values[j][i]; !math.IsNaN(v) {
					xs = append(xs, v)
				}
			}
			if len(xs) == 0 {
				continue
			}
			gr.Metrics[name(j)] = NumSummary{Count: len(xs), Min: floats.Min(xs), Max: floats.Max(xs), Mean: stat.Mean(xs, nil)}
		}
		if opt.CorrPerGroup && len(numCols) >= 2 {
			gr.CorrPairs = topPairs(correlationMatrix(values, numCols, idxs, name), maxGroupPairs)
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > maxGroups {
		out = out[:maxGroups]
	}
	return out
}

// correlationMatrix uses pairwise-complete observations. rowSel restricts
// the rows considered; nil means all. Pairs with fewer than two shared
// observations or zero variance get r = 0.
func correlationMatrix(values [][]float64, numCols []int, rowSel []int, name func(int) string) *CorrMatrix {
	n := len(numCols)
	cm := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, idx := range numCols {
		cm.Columns[i] = name(idx)
		cm.Values[i] = make([]float64, n)
		cm.Values[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(values[numCols[a]], values[numCols[b]], rowSel)
			cm.Values[a][b] = r
			cm.Values[b][a] = r
		}
	}
	return cm
}

func pearson(xs, ys []float64, rowSel []int) float64 {
	var x, y []float64
	add := func(i int) {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			return
		}
		x = append(x, xs[i])
		y = append(y, ys[i])
	}
	if rowSel == nil {
		for i := range xs {
			add(i)
		}
	} else {
		for _, i := range rowSel {
			add(i)
		}
	}
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// topPairs lists the strongest off-diagonal pairs by |r|.
func topPairs(cm *CorrMatrix, n int) []PairCorr {
	if cm == nil {
		return nil
	}
	var pairs []PairCorr
	for i := range cm.Columns {
		for j := i + 1; j < len(cm.Columns); j++ {
			if r := cm.Values[i][j]; r != 0 {
				pairs = append(pairs, PairCorr{A: cm.Columns[i], B: cm.Columns[j], R: r})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// Table renders the matrix with a leading "column" header cell.
func (cm *CorrMatrix) Table() *table.Table {
	cols := append([]string{"column"}, cm.Columns...)
	rows := make([][]string, len(cm.Columns))
	for i, name := range cm.Columns {
		row := make([]string, 0, len(cols))
		row = append(row, name)
		for _, v := range cm.Values[i] {
			row = append(row, FormatFloat(v))
		}
		rows[i] = row
	}
	return table.New("correlation", cols, rows)
}
