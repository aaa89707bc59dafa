package stats

import (
	"math"
	"sort"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// Ranked is one entry of a leaderboard.
type Ranked struct {
	Label string
	Value float64
}

// TopN ranks rows by metric, highest first, after dropping rows with a
// missing value or label. Ties keep table order.
func TopN(t *table.Table, metric, label string, n int) ([]Ranked, bool) {
	vals, ok := Values(t, metric)
	if !ok {
		return nil, false
	}
	labels, ok := t.Column(label)
	if !ok {
		return nil, false
	}
	out := make([]Ranked, 0, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || table.IsMissing(labels[i]) {
			continue
		}
		out = append(out, Ranked{Label: labels[i], Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, true
}
