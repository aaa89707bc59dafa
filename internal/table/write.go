package table

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/KaramelBytes/pitchloom/internal/utils"
)

// EncodeCSV renders the header and rows as comma-separated text. No index
// column is emitted.
func (t *Table) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		if err := w.Write(r); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV persists the table at path, replacing any existing file.
func (t *Table) WriteCSV(path string) error {
	b, err := t.EncodeCSV()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
