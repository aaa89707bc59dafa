package manifest_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/KaramelBytes/pitchloom/internal/manifest"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "df_jogadores.csv")
	m := manifest.New("data/players", out, []string{"player", "team"})
	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}
	m.FoldOrder = []string{"passing", "standard"}
	m.AddSource("passing", 10, 5).Included = true
	s := m.AddSource("misc", 3, 2)
	s.MissingKeys = []string{"team"}
	m.Rows, m.Columns = 12, 9

	if err := m.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if m.Path() != out+manifest.Suffix {
		t.Fatalf("unexpected path %s", m.Path())
	}

	got, err := manifest.Load(m.Path())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RunID != m.RunID || got.Rows != 12 || got.Columns != 9 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Sources["passing"].Included {
		t.Fatalf("passing should be included")
	}
	if got.Sources["misc"].Included || len(got.Sources["misc"].MissingKeys) != 1 {
		t.Fatalf("misc should be excluded: %+v", got.Sources["misc"])
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := manifest.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error")
	}
}
