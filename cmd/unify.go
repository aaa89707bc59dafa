package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/pitchloom/internal/config"
	"github.com/KaramelBytes/pitchloom/internal/pipeline"
)

var (
	unifyInput   string
	unifyOutput  string
	unifyKeys    []string
	unifyOrder   []string
	unifyExts    []string
	unifyNoManif bool
)

var unifyCmd = &cobra.Command{
	Use:   "unify",
	Short: "Join every source table on the key columns and write one CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		f := cmd.Flags()
		if f.Changed("input") {
			c.InputDir = unifyInput
		}
		if f.Changed("output") {
			c.OutputPath = unifyOutput
		}
		if f.Changed("keys") {
			if len(unifyKeys) == 0 {
				return fmt.Errorf("--keys must name at least one column")
			}
			c.KeyColumns = unifyKeys
		}
		if f.Changed("order") {
			c.FoldOrder = unifyOrder
		}
		if f.Changed("ext") {
			c.Extensions = unifyExts
		}
		if unifyNoManif {
			c.Manifest = false
		}
		return runUnify(&c)
	},
}

func pipelineConfig(c *cfgpkg.Global) pipeline.Config {
	return pipeline.Config{
		InputDir:   c.InputDir,
		OutputPath: c.OutputPath,
		Keys:       c.KeyColumns,
		Extensions: c.Extensions,
		Separator:  c.SuffixSeparator,
		Order:      c.FoldOrder,
		Manifest:   c.Manifest,
	}
}

func runUnify(c *cfgpkg.Global) error {
	res, err := pipeline.Run(pipelineConfig(c), log)
	if err != nil {
		return err
	}
	if res.ManifestPath != "" {
		log.WithField("path", res.ManifestPath).Debug("manifest written")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(unifyCmd)
	unifyCmd.Flags().StringVarP(&unifyInput, "input", "i", "", "directory holding the source tables")
	unifyCmd.Flags().StringVarP(&unifyOutput, "output", "o", "", "path of the unified CSV")
	unifyCmd.Flags().StringSliceVar(&unifyKeys, "keys", nil, "comma-separated key columns (default player,team)")
	unifyCmd.Flags().StringSliceVar(&unifyOrder, "order", nil, "sources folded first, in this order")
	unifyCmd.Flags().StringSliceVar(&unifyExts, "ext", nil, "file extensions to load (default .csv)")
	unifyCmd.Flags().BoolVar(&unifyNoManif, "no-manifest", false, "skip writing the run manifest")
}
