package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

func syntheticPlayers(n int) *table.Table {
	cols := []string{"player", "team", "position", "goals", "assists", "xg", "minutes_90s", "cards_red"}
	positions := []string{"FW", "DF", "MF"}
	var rows [][]string
	for i := 0; i < n; i++ {
		goals := i % 3
		xg := float64(goals)*0.9 + float64(i%7)*0.05
		red := ""
		if i%10 == 0 {
			red = "1"
		}
		rows = append(rows, []string{
			fmt.Sprintf("p%02d", i),
			"T" + strconv.Itoa(i%4),
			positions[i%3],
			strconv.Itoa(goals),
			strconv.Itoa((i * 7) % 4),
			strconv.FormatFloat(xg, 'f', 2, 64),
			strconv.Itoa(1 + (i*3)%10),
			red,
		})
	}
	// repeated key pair, dropped before analysis
	dup := append([]string(nil), rows[0]...)
	dup[3] = "99"
	rows = append(rows, dup)
	return table.New("unified", cols, rows)
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "relatorio", "graficos")
	log, hook := test.NewNullLogger()
	sum, err := Run(syntheticPlayers(30), Options{Dir: dir, Seed: 42, Log: log})
	require.NoError(t, err)

	for _, name := range []string{
		DescribeFile,
		"goals.png", "assists.png", "xg.png", "minutes_90s.png", "cards_red.png",
		CorrelationFile, CorrelationChart,
		PCAChart, ClustersChart,
		"estatistico_ml_gols_reglinear.png", "estatistico_ml_assists_reglinear.png",
		ClassificationFile, ConfusionFile, ConfusionChart,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	assert.NotContains(t, sum.Artifacts, filepath.Join(dir, "gca.png"))

	assert.Len(t, sum.TTests, 2)
	assert.Contains(t, sum.Regression, "goals")
	assert.Contains(t, sum.Regression, "assists")
	require.NotNil(t, sum.Classification)
	c := sum.Classification.Confusion
	assert.Equal(t, 6, c[0][0]+c[0][1]+c[1][0]+c[1][1], "20% of 30 rows held out")
	assert.Empty(t, sum.Skipped)

	var dupWarned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["dropped"] == 1 {
			dupWarned = true
		}
	}
	assert.True(t, dupWarned)

	desc, err := os.ReadFile(filepath.Join(dir, DescribeFile))
	require.NoError(t, err)
	assert.Contains(t, string(desc), "statistic,player,team,position,goals")
	assert.Contains(t, string(desc), "count,30,30,30,30")
}

func TestRunSkipsWhatItCannotCompute(t *testing.T) {
	dir := t.TempDir()
	tb := table.New("u", []string{"player", "team", "goals"}, [][]string{
		{"Bob", "X", "3"},
		{"Ann", "Y", ""},
	})
	log, hook := test.NewNullLogger()
	sum, err := Run(tb, Options{Dir: dir, Log: log})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, DescribeFile))
	assert.FileExists(t, filepath.Join(dir, "goals.png"))
	assert.NoFileExists(t, filepath.Join(dir, CorrelationFile))
	assert.NoFileExists(t, filepath.Join(dir, PCAChart))
	assert.Contains(t, sum.Skipped, "correlation")
	assert.Contains(t, sum.Skipped, "pca and clustering")
	assert.Contains(t, sum.Skipped, "models")
	assert.Empty(t, sum.TTests)

	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, len(sum.Skipped), warnings)
}

func TestRunRequiresDir(t *testing.T) {
	_, err := Run(syntheticPlayers(3), Options{})
	assert.Error(t, err)
}

func TestRunFile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "df_jogadores.csv")
	require.NoError(t, syntheticPlayers(30).WriteCSV(in))
	sum, err := RunFile(in, Options{Dir: t.TempDir(), Seed: 7})
	require.NoError(t, err)
	assert.NotEmpty(t, sum.Artifacts)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Goals Per90", Title("goals_per90"))
	assert.Equal(t, "Xg Assist", Title("xg_assist"))
}
