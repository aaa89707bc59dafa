// Package stats holds the numeric routines run on the unified table:
// rankings, hypothesis tests, PCA, clustering and baseline models.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/pitchloom/internal/analysis"
	"github.com/KaramelBytes/pitchloom/internal/table"
)

// ErrInsufficientData is returned when a routine lacks the rows or columns
// it needs.
var ErrInsufficientData = errors.New("insufficient data")

// Values parses a column; missing or non-numeric cells become NaN.
func Values(t *table.Table, col string) ([]float64, bool) {
	raw, ok := t.Column(col)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = math.NaN()
		if table.IsMissing(v) {
			continue
		}
		if x, ok := analysis.Numeric(v); ok {
			out[i] = x
		}
	}
	return out, true
}

// DropNaN returns the non-NaN entries of xs.
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// NumericColumns lists columns whose present cells all parse as numbers and
// whose present count reaches int(minFill * rows). minFill 1 selects
// complete columns only.
func NumericColumns(t *table.Table, minFill float64) []string {
	need := int(minFill * float64(t.NumRows()))
	var out []string
	for j, name := range t.Columns {
		present := 0
		numeric := true
		for _, r := range t.Rows {
			v := r[j]
			if table.IsMissing(v) {
				continue
			}
			if _, ok := analysis.Numeric(v); !ok {
				numeric = false
				break
			}
			present++
		}
		if numeric && present > 0 && present >= need {
			out = append(out, name)
		}
	}
	return out
}

// Matrix builds a rows x len(cols) matrix. Missing cells are filled with 0.
func Matrix(t *table.Table, cols []string) (*mat.Dense, error) {
	if t.NumRows() == 0 || len(cols) == 0 {
		return nil, ErrInsufficientData
	}
	m := mat.NewDense(t.NumRows(), len(cols), nil)
	for j, c := range cols {
		vals, ok := Values(t, c)
		if !ok {
			return nil, errors.New("matrix: column " + c + " not found")
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				v = 0
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// Without returns names minus the excluded ones, preserving order.
func Without(names []string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !skip[n] {
			out = append(out, n)
		}
	}
	return out
}
