// Package manifest records what a unification run consumed and produced.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/pitchloom/internal/utils"
)

// Suffix is appended to the output path to name the manifest file.
const Suffix = ".manifest.json"

// Manifest is persisted next to the unified table.
type Manifest struct {
	RunID          string             `json:"run_id"`
	CreatedAt      time.Time          `json:"created_at"`
	InputDir       string             `json:"input_dir"`
	OutputPath     string             `json:"output_path"`
	KeyColumns     []string           `json:"key_columns"`
	FoldOrder      []string           `json:"fold_order"`
	Sources        map[string]*Source `json:"sources"`
	Rows           int                `json:"rows"`
	Columns        int                `json:"columns"`
	DroppedColumns []string           `json:"dropped_columns,omitempty"`

	// Not serialized: where Save writes.
	path string `json:"-"`
}

// Source describes one loaded input table.
type Source struct {
	Name          string   `json:"name"`
	Rows          int      `json:"rows"`
	Columns       int      `json:"columns"`
	Included      bool     `json:"included"`
	MissingKeys   []string `json:"missing_keys,omitempty"`
	DuplicateRows int      `json:"duplicate_rows,omitempty"`
}

// New starts a manifest for a run writing to outputPath.
func New(inputDir, outputPath string, keys []string) *Manifest {
	return &Manifest{
		RunID:      uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: append([]string(nil), keys...),
		Sources:    make(map[string]*Source),
		path:       PathFor(outputPath),
	}
}

// PathFor returns the manifest location for a unified table path.
func PathFor(outputPath string) string { return outputPath + Suffix }

// Path returns the file Save writes to.
func (m *Manifest) Path() string { return m.path }

// AddSource registers a loaded table.
func (m *Manifest) AddSource(name string, rows, cols int) *Source {
	if m.Sources == nil {
		m.Sources = make(map[string]*Source)
	}
	s := &Source{Name: name, Rows: rows, Columns: cols}
	m.Sources[name] = s
	return s
}

// Load reads a manifest written by Save.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.path = path
	return &m, nil
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	if m.path == "" {
		return errors.New("manifest path not set")
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.path, data)
}
