// Package loader discovers tabular files in a directory and parses each one
// into a normalized table keyed by source name.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/pitchloom/internal/parser"
	"github.com/KaramelBytes/pitchloom/internal/table"
)

// DefaultExtensions lists the file extensions loaded when none are configured.
var DefaultExtensions = []string{".csv"}

// Options controls discovery.
type Options struct {
	// Extensions filters directory entries, compared case-insensitively.
	// Empty means DefaultExtensions.
	Extensions []string
	// Log receives one progress notice per loaded source. Nil discards.
	Log logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log != nil {
		return o.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (o Options) extensions() ([]string, error) {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !parser.Supports("x" + e) {
			return nil, fmt.Errorf("extension %s: %w", e, parser.ErrUnsupported)
		}
		out = append(out, e)
	}
	return out, nil
}

// Matches reports whether name carries one of the extensions.
func matches(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover lists the files in dir that would be loaded, sorted by name.
// Subdirectories are not searched.
func Discover(dir string, opt Options) ([]string, error) {
	exts, err := opt.extensions()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !e.Type().IsRegular() {
			continue
		}
		if matches(e.Name(), exts) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// LoadDir parses every discovered file and normalizes its header. The map is
// keyed by file name without extension. The first file that fails to parse
// aborts the load with a *parser.ParseError.
func LoadDir(dir string, opt Options) (map[string]*table.Table, error) {
	log := opt.logger()
	paths, err := Discover(dir, opt)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*table.Table, len(paths))
	origin := make(map[string]string, len(paths))
	for _, p := range paths {
		name := parser.SourceName(p)
		if prev, ok := origin[name]; ok {
			return nil, fmt.Errorf("source %q defined twice: %s and %s", name, filepath.Base(prev), filepath.Base(p))
		}
		t, err := parser.ParseFile(p)
		if err != nil {
			return nil, err
		}
		t = t.Normalized()
		out[name] = t
		origin[name] = p
		log.WithFields(logrus.Fields{"source": name, "rows": t.NumRows(), "cols": t.NumCols()}).
			Infof("✓ %s loaded: %s", name, t.Shape())
	}
	return out, nil
}
