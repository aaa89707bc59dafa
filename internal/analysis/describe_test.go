package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

func TestDescribe(t *testing.T) {
	tb := table.New("u", []string{"player", "goals"}, [][]string{
		{"Bob", "3"},
		{"Ann", ""},
		{"Bob", "5"},
		{"", "1"},
	})
	d := Describe(tb)
	require.Equal(t, []string{"statistic", "player", "goals"}, d.Columns)
	require.Len(t, d.Rows, len(DescribeRows))

	got := map[string][]string{}
	for _, r := range d.Rows {
		got[r[0]] = r[1:]
	}
	assert.Equal(t, []string{"3", "3"}, got["count"])
	assert.Equal(t, []string{"2", ""}, got["unique"])
	assert.Equal(t, []string{"Bob", ""}, got["top"])
	assert.Equal(t, []string{"2", ""}, got["freq"])
	assert.Equal(t, []string{"", "3"}, got["mean"])
	assert.Equal(t, []string{"", "2"}, got["std"])
	assert.Equal(t, []string{"", "1"}, got["min"])
	assert.Equal(t, []string{"", "2"}, got["25%"])
	assert.Equal(t, []string{"", "3"}, got["50%"])
	assert.Equal(t, []string{"", "4"}, got["75%"])
	assert.Equal(t, []string{"", "5"}, got["max"])
}

func TestDescribeEmptyColumn(t *testing.T) {
	d := Describe(table.New("u", []string{"xg"}, [][]string{{""}, {" "}}))
	assert.Equal(t, []string{"count", "0"}, d.Rows[0])
	for _, r := range d.Rows[1:] {
		assert.Equal(t, "", r[1], r[0])
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3", 3, true},
		{"0.45", 0.45, true},
		{"1,234", 1234, true},
		{"0,5", 0.5, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"75%", 75, true},
		{"-2", -2, true},
		{"", 0, false},
		{"FW", 0, false},
		{"2024-05-01", 0, false},
		{"NaN", 0, false},
	}
	for _, c := range cases {
		got, ok := Numeric(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-12, c.in)
		}
	}
}

func TestQuantile(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(s, 0))
	assert.Equal(t, 2.5, Quantile(s, 0.5))
	assert.Equal(t, 4.0, Quantile(s, 1))
	assert.InDelta(t, 1.75, Quantile(s, 0.25), 1e-12)
}
