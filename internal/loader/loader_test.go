package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pitchloom/internal/parser"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirNormalizesAndNames(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "standard.csv", " Player ,Team,Goals Scored\nBob,X,3\n")
	write(t, dir, "passing.CSV", "player,team,Passes Completed\nBob,X,40\nAnn,Y,12\n")
	write(t, dir, "player_data_description.json", `{"player":"name"}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	log, hook := test.NewNullLogger()
	tables, err := LoadDir(dir, Options{Log: log})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	std := tables["standard"]
	require.NotNil(t, std)
	assert.Equal(t, []string{"player", "team", "goals_scored"}, std.Columns)
	assert.Equal(t, "standard", std.Name)

	pass := tables["passing"]
	require.NotNil(t, pass)
	assert.Equal(t, 2, pass.NumRows())

	require.Len(t, hook.AllEntries(), 2)
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.InfoLevel, e.Level)
		assert.Contains(t, e.Data, "rows")
		assert.Contains(t, e.Data, "cols")
	}
}

func TestLoadDirCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.csv", "player,team\nBob,X\n")
	write(t, dir, "b.tsv", "player\tteam\nAnn\tY\n")

	tables, err := LoadDir(dir, Options{Extensions: []string{"tsv"}})
	require.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Contains(t, tables, "b")

	_, err = LoadDir(dir, Options{Extensions: []string{".json"}})
	assert.ErrorIs(t, err, parser.ErrUnsupported)
}

func TestLoadDirDuplicateSourceName(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.csv", "player,team\nBob,X\n")
	write(t, dir, "a.tsv", "player\tteam\nAnn\tY\n")
	_, err := LoadDir(dir, Options{Extensions: []string{".csv", ".tsv"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined twice")
}

func TestLoadDirParseErrorAborts(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "good.csv", "player,team\nBob,X\n")
	write(t, dir, "bad.csv", "player,team\n\"unterminated\n")
	_, err := LoadDir(dir, Options{})
	require.Error(t, err)
	var pe *parser.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, filepath.Join(dir, "bad.csv"), pe.Path)
}

func TestLoadDirMissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDirEmpty(t *testing.T) {
	tables, err := LoadDir(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, tables)
}
