// Package pipeline runs the unification stages in order:
// load, normalize, filter, fold, dedup, write.
package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/pitchloom/internal/loader"
	"github.com/KaramelBytes/pitchloom/internal/manifest"
	"github.com/KaramelBytes/pitchloom/internal/table"
	"github.com/KaramelBytes/pitchloom/internal/unify"
)

// Stage names reported in StageError.
const (
	StageLoad     = "load"
	StageUnify    = "unify"
	StageWrite    = "write"
	StageManifest = "manifest"
)

// PreviewColumns is how many column names the success notice lists.
const PreviewColumns = 15

// Config is everything a run needs. No paths are derived from process state.
type Config struct {
	InputDir   string
	OutputPath string
	Keys       []string
	Extensions []string
	Separator  string
	Order      []string
	Manifest   bool
}

// StageError names the stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Result summarizes a successful run.
type Result struct {
	Table        *table.Table
	Unify        *unify.Result
	OutputPath   string
	ManifestPath string
}

// Run executes the pipeline. Nothing is written unless every stage before
// the write succeeds.
func Run(cfg Config, log logrus.FieldLogger) (*Result, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	// Headers are normalized on load, so keys are too.
	cfg.Keys = table.NormalizeColumns(cfg.Keys)
	if cfg.OutputPath == "" {
		return nil, &StageError{Stage: StageWrite, Err: fmt.Errorf("output path not set")}
	}

	sources, err := loader.LoadDir(cfg.InputDir, loader.Options{Extensions: cfg.Extensions, Log: log})
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	ur, err := unify.Unify(sources, unify.Options{
		Keys:      cfg.Keys,
		Separator: cfg.Separator,
		Order:     cfg.Order,
		Log:       log,
	})
	if err != nil {
		return nil, &StageError{Stage: StageUnify, Err: err}
	}

	if err := ur.Table.WriteCSV(cfg.OutputPath); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}
	res := &Result{Table: ur.Table, Unify: ur, OutputPath: cfg.OutputPath}

	if cfg.Manifest {
		m := buildManifest(cfg, sources, ur)
		if err := m.Save(); err != nil {
			return nil, &StageError{Stage: StageManifest, Err: err}
		}
		res.ManifestPath = m.Path()
	}

	log.WithFields(logrus.Fields{
		"rows":   ur.Table.NumRows(),
		"cols":   ur.Table.NumCols(),
		"output": cfg.OutputPath,
	}).Infof("✓ unified table saved: %s", ur.Table.Shape())
	log.Infof("columns: %s", Preview(ur.Table.Columns, PreviewColumns))
	return res, nil
}

// Preview joins the first n names, noting how many were left out.
func Preview(cols []string, n int) string {
	if len(cols) <= n {
		return strings.Join(cols, ", ")
	}
	return fmt.Sprintf("%s, ... (+%d more)", strings.Join(cols[:n], ", "), len(cols)-n)
}

func buildManifest(cfg Config, sources map[string]*table.Table, ur *unify.Result) *manifest.Manifest {
	keys := cfg.Keys
	if len(keys) == 0 {
		keys = unify.DefaultKeys
	}
	m := manifest.New(cfg.InputDir, cfg.OutputPath, keys)
	m.FoldOrder = append([]string(nil), ur.Included...)
	for name, t := range sources {
		m.AddSource(name, t.NumRows(), t.NumCols())
	}
	for _, n := range ur.Included {
		s := m.Sources[n]
		s.Included = true
		s.DuplicateRows = ur.DuplicateRows[n]
	}
	for _, e := range ur.Excluded {
		m.Sources[e.Source].MissingKeys = e.MissingKeys
	}
	m.Rows, m.Columns = ur.Table.NumRows(), ur.Table.NumCols()
	m.DroppedColumns = ur.DroppedColumns
	return m
}
