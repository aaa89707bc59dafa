package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// DescribeRows are the statistic names emitted by Describe, in order.
var DescribeRows = []string{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe summarizes every column. A column whose present cells all parse
// as numbers gets count, mean, std, min, quartiles and max; any other
// column gets count, unique, top and freq. Statistics that do not apply are
// left missing. The first column, "statistic", names each row.
func Describe(t *table.Table) *table.Table {
	cols := append([]string{"statistic"}, t.Columns...)
	rows := make([][]string, len(DescribeRows))
	for i, name := range DescribeRows {
		rows[i] = make([]string, len(cols))
		rows[i][0] = name
	}
	for j := range t.Columns {
		stats := describeColumn(columnAt(t, j))
		for i, s := range DescribeRows {
			rows[i][j+1] = stats[s]
		}
	}
	return table.New("describe", cols, rows)
}

func columnAt(t *table.Table, j int) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out
}

func describeColumn(vals []string) map[string]string {
	var present []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			present = append(present, v)
		}
	}
	out := map[string]string{"count": strconv.Itoa(len(present))}
	if len(present) == 0 {
		return out
	}
	nums := make([]float64, 0, len(present))
	for _, v := range present {
		x, ok := Numeric(v)
		if !ok {
			nums = nil
			break
		}
		nums = append(nums, x)
	}
	if nums == nil {
		top, freq, unique := mode(present)
		out["unique"] = strconv.Itoa(unique)
		out["top"] = top
		out["freq"] = strconv.Itoa(freq)
		return out
	}

	sort.Float64s(nums)
	out["mean"] = FormatFloat(stat.Mean(nums, nil))
	out["std"] = FormatFloat(math.NaN())
	if len(nums) > 1 {
		out["std"] = FormatFloat(stat.StdDev(nums, nil))
	}
	out["min"] = FormatFloat(floats.Min(nums))
	out["25%"] = FormatFloat(Quantile(nums, 0.25))
	out["50%"] = FormatFloat(Quantile(nums, 0.5))
	out["75%"] = FormatFloat(Quantile(nums, 0.75))
	out["max"] = FormatFloat(floats.Max(nums))
	return out
}

// mode returns the most frequent value (earliest on ties), its count and
// the number of distinct values.
func mode(vals []string) (string, int, int) {
	counts := make(map[string]int, len(vals))
	var order []string
	for _, v := range vals {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	var top string
	freq := 0
	for _, v := range order {
		if counts[v] > freq {
			top, freq = v, counts[v]
		}
	}
	return top, freq, len(order)
}
