package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pitchloom/internal/loader"
	"github.com/KaramelBytes/pitchloom/internal/table"
	"github.com/KaramelBytes/pitchloom/internal/unify"
)

var (
	srcInput string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List discovered sources in fold order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		dir := c.InputDir
		if srcInput != "" {
			dir = srcInput
		}
		tables, err := loader.LoadDir(dir, loader.Options{Extensions: c.Extensions, Log: log})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tables) == 0 {
			fmt.Fprintln(out, "(no sources)")
			return nil
		}
		names := make([]string, 0, len(tables))
		for n := range tables {
			names = append(names, n)
		}
		order, err := unify.FoldOrder(names, c.FoldOrder)
		if err != nil {
			return err
		}
		_, excluded := unify.Eligible(tables, order, table.NormalizeColumns(c.KeyColumns))
		missing := make(map[string][]string, len(excluded))
		for _, e := range excluded {
			missing[e.Source] = e.MissingKeys
		}
		for i, n := range order {
			t := tables[n]
			status := "ok"
			if m, ok := missing[n]; ok {
				status = "skipped: missing " + strings.Join(m, ", ")
			}
			fmt.Fprintf(out, "%2d. %s %s %s\n", i+1, n, t.Shape(), status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().StringVarP(&srcInput, "input", "i", "", "directory holding the source tables")
}
