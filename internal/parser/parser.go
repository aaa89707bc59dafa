// Package parser turns tabular files into tables. Parsers are selected by
// file extension from a registry; unknown extensions are rejected.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// Parser defines a tabular file parser implementation.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) (*table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates no registered parser handles the file extension.
var ErrUnsupported = errors.New("unsupported tabular format")

// ParseError reports a file that exists but is not valid tabular data.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Supports reports whether some registered parser accepts filename.
func Supports(filename string) bool {
	return lookup(filename) != nil
}

func lookup(filename string) Parser {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// SourceName derives a table name from a path: the base name with its
// extension stripped.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFile reads path and parses it with the parser registered for its
// extension. The returned table is named after the file. Read failures are
// returned as-is; content failures are wrapped in *ParseError.
func ParseFile(path string) (*table.Table, error) {
	p := lookup(path)
	if p == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	t, err := p.Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	t.Name = SourceName(path)
	return t, nil
}

func init() {
	Register(csvParser{comma: ',', ext: ".csv"})
	Register(csvParser{comma: '\t', ext: ".tsv"})
	Register(xlsxParser{})
}
