package parser_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pitchloom/internal/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestParseFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "standard_stats.csv", "\ufeffPlayer,Team,Goals\nBob,X,3\nAnn,Y\n")
	tb, err := parser.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, "standard_stats", tb.Name)
	assert.Equal(t, []string{"Player", "Team", "Goals"}, tb.Columns)
	assert.Equal(t, [][]string{{"Bob", "X", "3"}, {"Ann", "Y", ""}}, tb.Rows)
}

func TestParseFileTSV(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "passing.tsv", "player\tteam\tpasses completed\nBob\tX\t41\n")
	tb, err := parser.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"player", "team", "passes completed"}, tb.Columns)
	assert.Equal(t, "41", tb.Rows[0][2])
}

func TestParseFileHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "empty_rows.csv", "player,team\n")
	tb, err := parser.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, 0, tb.NumRows())
	assert.Equal(t, 2, tb.NumCols())
}

func TestParseFileInvalidData(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.csv":  "",
		"wide.csv":   "player,team\nBob,X,extra\n",
		"quotes.csv": "player,team\n\"Bob,X\n",
	}
	for name, content := range cases {
		p := writeFile(t, dir, name, content)
		_, err := parser.ParseFile(p)
		require.Error(t, err, name)
		var pe *parser.ParseError
		assert.True(t, errors.As(err, &pe), "%s: expected ParseError, got %v", name, err)
	}
	_, err := parser.ParseFile(filepath.Join(dir, "empty.csv"))
	assert.ErrorIs(t, err, parser.ErrEmpty)
}

func TestParseFileUnsupportedAndMissing(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "notes.txt", "hello")
	_, err := parser.ParseFile(p)
	assert.ErrorIs(t, err, parser.ErrUnsupported)
	assert.False(t, parser.Supports("notes.txt"))
	assert.True(t, parser.Supports("STATS.CSV"))

	_, err = parser.ParseFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	var pe *parser.ParseError
	assert.False(t, errors.As(err, &pe), "read failures are I/O errors, not parse errors")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFileXLSX(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "keepers.xlsx")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	entries := map[string]string{
		"xl/workbook.xml": `<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>` +
			`<sheet name="Data" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships><Relationship Id="rId1" Target="/xl/worksheets/sheet1.xml"/></Relationships>`,
		"xl/sharedStrings.xml":       `<sst><si><t>Player</t></si><si><t>Team</t></si><si><t>Saves</t></si><si><t>Bob</t></si><si><t>X</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>` +
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>` +
			`<row r="2"><c r="A2" t="s"><v>3</v></c><c r="C2"><v>12</v></c></row>` +
			`</sheetData></worksheet>`,
	}
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	tb, err := parser.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, "keepers", tb.Name)
	assert.Equal(t, []string{"Player", "Team", "Saves"}, tb.Columns)
	assert.Equal(t, [][]string{{"Bob", "", "12"}}, tb.Rows)
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "player_shooting", parser.SourceName("/data/players/player_shooting.csv"))
	assert.Equal(t, "a.b", parser.SourceName("a.b.csv"))
}
