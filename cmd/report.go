package cmd

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/pitchloom/internal/config"
	"github.com/KaramelBytes/pitchloom/internal/report"
)

var (
	repDir  string
	repTopN int
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Write rankings, statistics, projections and model charts",
	Long: `Run the downstream analytics on a unified table: descriptive statistics,
top-N rankings, correlations, Welch t-tests, PCA, k-means clusters and baseline
regression and classification models. Artifacts go to report_dir.

With no file the unified output from the configuration is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		path := c.OutputPath
		if len(args) == 1 {
			path = args[0]
		}
		opt := reportOptions(c)
		if repDir != "" {
			opt.Dir = repDir
		}
		if repTopN > 0 {
			opt.TopN = repTopN
		}
		sum, err := report.RunFile(path, opt)
		if err != nil {
			return err
		}
		logSummary(sum)
		return nil
	},
}

func reportOptions(c *cfgpkg.Global) report.Options {
	return report.Options{
		Dir:           c.ReportDir,
		Keys:          c.KeyColumns,
		Metrics:       c.RankingMetrics,
		TopN:          c.TopN,
		FillThreshold: c.FillThreshold,
		Clusters:      c.Clusters,
		Seed:          c.Seed,
		TestFraction:  c.TestFraction,
		Log:           log,
	}
}

func logSummary(sum *report.Summary) {
	names := make([]string, 0, len(sum.TTests))
	for n := range sum.TTests {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		tt := sum.TTests[n]
		log.WithFields(logrus.Fields{"t": tt.T, "df": tt.DF, "p": tt.P}).Infof("t-test %s", n)
	}
	targets := make([]string, 0, len(sum.Regression))
	for n := range sum.Regression {
		targets = append(targets, n)
	}
	sort.Strings(targets)
	for _, n := range targets {
		m := sum.Regression[n]
		log.WithFields(logrus.Fields{"mae": m.MAE, "mse": m.MSE, "r2": m.R2}).Infof("regression %s", n)
	}
	if m := sum.Classification; m != nil {
		log.WithFields(logrus.Fields{
			"accuracy":  m.Accuracy,
			"precision": m.Precision,
			"recall":    m.Recall,
		}).Info("classification goals > 0")
	}
	if len(sum.Skipped) > 0 {
		log.WithField("skipped", len(sum.Skipped)).Warnf("⚠ %d steps skipped", len(sum.Skipped))
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repDir, "dir", "d", "", "directory for charts and tables (overrides report_dir)")
	reportCmd.Flags().IntVar(&repTopN, "top", 0, "players per ranking (overrides top_n)")
}
