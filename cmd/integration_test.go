package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/pitchloom/internal/pipeline"
)

// resetFlags clears values and Changed state that persist across Execute
// calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func writeSources(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"standard.csv": "Player,Team,Goals\nBob,X,3\nAnn,Y,\n",
		"passing.csv":  "Player,Team,Assists\nBob,X,2\nAnn,Y,1\n",
		"notes.csv":    "Player,Comment\nBob,fast\n",
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestCLI_UnifyWritesOutputAndManifest(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := filepath.Join(home, "players")
	out := filepath.Join(home, "out", "df.csv")
	writeSources(t, in)

	runCmd(t, "unify", "-i", in, "-o", out)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "player,team,assists,goals\nBob,X,2,3\nAnn,Y,1,\n"
	if string(b) != want {
		t.Fatalf("unexpected output:\n%s", b)
	}
	if _, err := os.Stat(out + ".manifest.json"); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestCLI_RootRunsUnifyFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := filepath.Join(home, "players")
	out := filepath.Join(home, "df.csv")
	writeSources(t, in)
	cfgPath := filepath.Join(home, "pitchloom.yaml")
	body := "input_dir: " + in + "\noutput_path: " + out + "\nmanifest: false\nfold_order: [standard]\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	runCmd(t, "--config", cfgPath)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(b), "player,team,goals,assists\n") {
		t.Fatalf("explicit fold order not applied:\n%s", b)
	}
	if _, err := os.Stat(out + ".manifest.json"); !os.IsNotExist(err) {
		t.Fatalf("manifest written despite manifest: false")
	}
}

func TestCLI_UnifyMissingInputNamesStage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	out := filepath.Join(home, "df.csv")

	_, err := execute(t, "unify", "-i", filepath.Join(home, "nope"), "-o", out)
	var se *pipeline.StageError
	if !errors.As(err, &se) || se.Stage != pipeline.StageLoad {
		t.Fatalf("expected load stage error, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output written on failure")
	}
}

func TestCLI_SourcesListsEligibility(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := filepath.Join(home, "players")
	writeSources(t, in)

	got := runCmd(t, "sources", "-i", in)
	want := " 1. notes (1, 2) skipped: missing team\n" +
		" 2. passing (2, 3) ok\n" +
		" 3. standard (2, 3) ok\n"
	if got != want {
		t.Fatalf("unexpected listing:\n%s", got)
	}
}

func TestCLI_AnalyzeWritesMarkdown(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := filepath.Join(home, "players")
	out := filepath.Join(home, "df.csv")
	md := filepath.Join(home, "summary.md")
	writeSources(t, in)

	runCmd(t, "unify", "-i", in, "-o", out, "--no-manifest")
	runCmd(t, "analyze", out, "-o", md)

	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(b), "goals") {
		t.Fatalf("summary lacks goals column:\n%s", b)
	}
}

func TestCLI_InitAndConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(home); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	runCmd(t, "init")
	for _, d := range []string{filepath.Join("data", "players"), filepath.Join("relatorio", "graficos")} {
		if info, err := os.Stat(filepath.Join(home, d)); err != nil || !info.IsDir() {
			t.Fatalf("init did not create %s: %v", d, err)
		}
	}
	if _, err := execute(t, "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting config")
	}

	runCmd(t, "config", "set", "top_n", "5")
	got := runCmd(t, "config", "show")
	if !strings.Contains(got, "top_n: 5\n") {
		t.Fatalf("config show missing update:\n%s", got)
	}
	if _, err := execute(t, "config", "set", "clusters", "zero"); err == nil {
		t.Fatalf("expected invalid clusters to fail")
	}
}

func TestCLI_UnifyKeysAsSpelledInHeaders(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := filepath.Join(home, "players")
	out := filepath.Join(home, "df.csv")
	writeSources(t, in)

	runCmd(t, "unify", "-i", in, "-o", out, "--keys", "Player,Team", "--no-manifest")

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(b), "player,team,") {
		t.Fatalf("unexpected header:\n%s", b)
	}
}
