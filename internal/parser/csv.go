package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// ErrEmpty indicates a file without a header row.
var ErrEmpty = errors.New("no columns to parse")

type csvParser struct {
	comma rune
	ext   string
}

func (p csvParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), p.ext)
}

// Parse decodes delimited text with a header row. A UTF-8 BOM is dropped.
// Short rows are padded with missing cells; rows wider than the header are
// rejected.
func (p csvParser) Parse(content []byte) (*table.Table, error) {
	dec := transform.NewReader(bytes.NewReader(content), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(dec)
	r.Comma = p.comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, ErrEmpty
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", len(rows)+1, len(header), len(rec))
		}
		rows = append(rows, rec)
	}
	return table.New("", header, rows), nil
}
