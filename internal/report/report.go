// Package report runs the exploratory analytics over a unified table and
// writes every artifact into one directory.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/pitchloom/internal/chart"
	"github.com/KaramelBytes/pitchloom/internal/parser"
	"github.com/KaramelBytes/pitchloom/internal/stats"
	"github.com/KaramelBytes/pitchloom/internal/table"
)

// Artifact file names.
const (
	DescribeFile       = "estatisticas_descritivas.csv"
	CorrelationFile    = "correlacao.csv"
	CorrelationChart   = "estatistico_correlacao.png"
	PCAChart           = "estatistico_pca.png"
	ClustersChart      = "estatistico_clusters.png"
	ConfusionFile      = "confusao.csv"
	ConfusionChart     = "estatistico_ml_classificacao_confusao.png"
	ClassificationFile = "estatistico_ml_classificacao_gol.png"
)

// DefaultMetrics are ranked when Options.Metrics is empty.
var DefaultMetrics = []string{
	"goals", "assists", "xg", "xg_assist", "goals_per90", "assists_per90",
	"gca", "sca", "passes_completed", "dribbles_completed", "minutes_90s",
	"cards_yellow", "cards_red",
}

// Options configures a report run. Zero values fall back to defaults.
type Options struct {
	Dir           string
	Keys          []string
	Label         string
	Metrics       []string
	TopN          int
	FillThreshold float64
	Clusters      int
	Restarts      int
	Seed          int64
	TestFraction  float64
	Log           logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	o.Keys = table.NormalizeColumns(o.Keys)
	if len(o.Keys) == 0 {
		o.Keys = []string{"player", "team"}
	}
	o.Label = table.NormalizeName(o.Label)
	if o.Label == "" {
		o.Label = "player"
	}
	if len(o.Metrics) == 0 {
		o.Metrics = DefaultMetrics
	}
	if o.TopN <= 0 {
		o.TopN = 10
	}
	if o.FillThreshold <= 0 {
		o.FillThreshold = 0.8
	}
	if o.Clusters <= 0 {
		o.Clusters = 4
	}
	if o.Restarts <= 0 {
		o.Restarts = 10
	}
	if o.TestFraction <= 0 {
		o.TestFraction = 0.2
	}
	if o.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Log = l
	}
	return o
}

// Summary collects what a run produced.
type Summary struct {
	Artifacts      []string
	Skipped        []string
	TTests         map[string]stats.TTest
	Regression     map[string]stats.RegressionMetrics
	Classification *stats.ClassificationMetrics
}

// RunFile reads a unified table from path and runs the report on it.
func RunFile(path string, opt Options) (*Summary, error) {
	t, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Run(t.Normalized(), opt)
}

type runner struct {
	opt Options
	t   *table.Table
	sum *Summary
}

// Run produces every artifact it has data for. Steps lacking data are
// skipped with a warning; file system failures abort the run.
func Run(t *table.Table, opt Options) (*Summary, error) {
	opt = opt.withDefaults()
	if opt.Dir == "" {
		return nil, errors.New("report: output directory not set")
	}
	r := &runner{
		opt: opt,
		t:   t,
		sum: &Summary{TTests: map[string]stats.TTest{}, Regression: map[string]stats.RegressionMetrics{}},
	}
	if t.HasColumns(opt.Keys...) {
		deduped, dropped, err := t.DropDuplicateRows(opt.Keys...)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			opt.Log.WithField("dropped", dropped).Warnf("⚠ %d rows repeat a key pair, kept first", dropped)
		}
		r.t = deduped
	}

	steps := []func() error{
		r.describe,
		r.rankings,
		r.correlation,
		r.hypothesisTests,
		r.projection,
		r.models,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return r.sum, err
		}
	}
	opt.Log.WithField("artifacts", len(r.sum.Artifacts)).Infof("✓ report written to %s", opt.Dir)
	return r.sum, nil
}

func (r *runner) path(name string) string { return filepath.Join(r.opt.Dir, name) }

func (r *runner) wrote(path string) {
	r.sum.Artifacts = append(r.sum.Artifacts, path)
	r.opt.Log.WithField("path", path).Infof("✓ saved %s", filepath.Base(path))
}

// skip records a step that could not run for lack of data. Other errors
// are returned unchanged.
func (r *runner) skip(what string, err error) error {
	if errors.Is(err, stats.ErrInsufficientData) || errors.Is(err, stats.ErrSingleClass) || errors.Is(err, chart.ErrNoData) {
		r.sum.Skipped = append(r.sum.Skipped, what)
		r.opt.Log.WithField("reason", err.Error()).Warnf("⚠ %s skipped", what)
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (r *runner) writeTable(t *table.Table, name string) error {
	p := r.path(name)
	if err := t.WriteCSV(p); err != nil {
		return err
	}
	r.wrote(p)
	return nil
}

var titler = cases.Title(language.Und)

// Title turns a metric name like "goals_per90" into "Goals Per90".
func Title(metric string) string {
	return titler.String(strings.ReplaceAll(metric, "_", " "))
}

func (r *runner) rankings() error {
	for _, m := range r.opt.Metrics {
		top, ok := stats.TopN(r.t, m, r.opt.Label, r.opt.TopN)
		if !ok {
			continue
		}
		labels := make([]string, len(top))
		values := make([]float64, len(top))
		for i, e := range top {
			labels[i], values[i] = e.Label, e.Value
		}
		p := r.path(m + ".png")
		title := "Top " + strconv.Itoa(r.opt.TopN) + ": " + Title(m)
		if err := chart.HorizontalBars(p, title, Title(m), "Player", labels, values); err != nil {
			if err := r.skip("ranking "+m, err); err != nil {
				return err
			}
			continue
		}
		r.wrote(p)
	}
	return nil
}
