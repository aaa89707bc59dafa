// Package chart renders report figures as PNG files.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/pitchloom/internal/utils"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data")

var steelBlue = color.RGBA{R: 70, G: 130, B: 180, A: 255}

const (
	wideW   = 10 * vg.Inch
	wideH   = 6 * vg.Inch
	metricW = 8 * vg.Inch
	metricH = 4 * vg.Inch
)

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// HorizontalBars draws one bar per label with the first entry on top.
func HorizontalBars(path, title, xLabel, yLabel string, labels []string, values []float64) error {
	if len(values) == 0 || len(labels) != len(values) {
		return ErrNoData
	}
	n := len(values)
	vals := make(plotter.Values, n)
	names := make([]string, n)
	for i := range values {
		vals[n-1-i] = values[i]
		names[n-1-i] = labels[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	bars, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = steelBlue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)
	return save(p, wideW, wideH, path)
}

// MetricBars draws vertical bars annotated with their values.
func MetricBars(path, title string, names []string, values []float64) error {
	if len(values) == 0 || len(names) != len(values) {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(40))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = steelBlue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	xys := make(plotter.XYs, len(values))
	texts := make([]string, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		texts[i] = fmt.Sprintf("%.2f", v)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return fmt.Errorf("bar labels: %w", err)
	}
	p.Add(labels)
	return save(p, metricW, metricH, path)
}

// Scatter plots points coloured by group. A nil groups slice draws one
// series.
func Scatter(path, title, xLabel, yLabel string, xs, ys []float64, groups []int) error {
	if len(xs) == 0 || len(xs) != len(ys) || (groups != nil && len(groups) != len(xs)) {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	series := map[int]plotter.XYs{}
	var order []int
	for i := range xs {
		g := 0
		if groups != nil {
			g = groups[i]
		}
		if _, ok := series[g]; !ok {
			order = append(order, g)
		}
		series[g] = append(series[g], plotter.XY{X: xs[i], Y: ys[i]})
	}
	sort.Ints(order)
	for _, g := range order {
		s, err := plotter.NewScatter(series[g])
		if err != nil {
			return fmt.Errorf("scatter: %w", err)
		}
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = plotutil.DefaultGlyphShapes[0]
		if groups == nil {
			s.GlyphStyle.Color = steelBlue
		} else {
			s.GlyphStyle.Color = plotutil.Color(g)
			p.Legend.Add(fmt.Sprintf("cluster %d", g), s)
		}
		p.Add(s)
	}
	return save(p, wideW, wideH, path)
}

// Heatmap draws a square matrix with colours scaled to [lo, hi] and each
// cell's value printed on it. Row 0 is drawn at the top.
func Heatmap(path, title string, labels []string, values [][]float64, lo, hi float64) error {
	n := len(labels)
	if n == 0 || len(values) != n {
		return ErrNoData
	}
	if hi <= lo {
		hi = lo + 1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)
	hm := plotter.NewHeatMap(grid{v: values}, cm.Palette(255))
	hm.Min, hm.Max = lo, hi

	p := plot.New()
	p.Title.Text = title
	p.Add(hm)
	annot, err := plotter.NewLabels(cellLabels(values))
	if err != nil {
		return fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range annot.TextStyle {
		annot.TextStyle[i].XAlign = draw.XCenter
		annot.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(annot)
	p.NominalX(labels...)
	rev := make([]string, n)
	for i, l := range labels {
		rev[n-1-i] = l
	}
	p.NominalY(rev...)
	side := vg.Length(n)*0.6*vg.Inch + 3*vg.Inch
	return save(p, side, side, path)
}

// grid adapts a row-major matrix to plotter.GridXYZ, flipping rows so the
// first one renders on top.
type grid struct{ v [][]float64 }

func (g grid) Dims() (c, r int)   { return len(g.v), len(g.v) }
func (g grid) Z(c, r int) float64 { return g.v[len(g.v)-1-r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// cellLabels places one label per cell in grid coordinates. Whole numbers
// print without decimals, NaN prints empty.
func cellLabels(values [][]float64) plotter.XYLabels {
	n := len(values)
	out := plotter.XYLabels{XYs: make(plotter.XYs, 0, n*n), Labels: make([]string, 0, n*n)}
	for r := 0; r < n; r++ {
		row := values[n-1-r]
		for c := 0; c < n && c < len(row); c++ {
			v := row[c]
			text := fmt.Sprintf("%.2f", v)
			switch {
			case math.IsNaN(v):
				text = ""
			case v == math.Trunc(v):
				text = fmt.Sprintf("%.0f", v)
			}
			out.XYs = append(out.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			out.Labels = append(out.Labels, text)
		}
	}
	return out
}
