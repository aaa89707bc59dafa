package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pitchloom/internal/analysis"
	"github.com/KaramelBytes/pitchloom/internal/chart"
	"github.com/KaramelBytes/pitchloom/internal/stats"
	"github.com/KaramelBytes/pitchloom/internal/table"
)

const logisticL2 = 1.0

func (r *runner) describe() error {
	return r.writeTable(analysis.Describe(r.t), DescribeFile)
}

// correlation uses numeric columns without missing cells.
func (r *runner) correlation() error {
	cols := stats.NumericColumns(r.t, 1)
	if len(cols) < 2 {
		return r.skip("correlation", fmt.Errorf("%d complete numeric columns: %w", len(cols), stats.ErrInsufficientData))
	}
	x, err := stats.Matrix(r.t, cols)
	if err != nil {
		return r.skip("correlation", err)
	}
	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, x, nil)
	cm := &analysis.CorrMatrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i := range cols {
		cm.Values[i] = make([]float64, len(cols))
		for j := range cols {
			cm.Values[i][j] = sym.At(i, j)
		}
	}
	if err := r.writeTable(cm.Table(), CorrelationFile); err != nil {
		return err
	}
	p := r.path(CorrelationChart)
	if err := chart.Heatmap(p, "Correlation between metrics", cols, cm.Values, -1, 1); err != nil {
		return r.skip("correlation heatmap", err)
	}
	r.wrote(p)
	return nil
}

func (r *runner) positionColumn() string {
	for _, c := range []string{"position", "pos"} {
		if r.t.Index(c) >= 0 {
			return c
		}
	}
	return ""
}

// sample collects numeric values of metric on rows where keep holds.
func (r *runner) sample(metric string, keep func(i int) bool) []float64 {
	vals, ok := stats.Values(r.t, metric)
	if !ok {
		return nil
	}
	var out []float64
	for i, v := range vals {
		if keep(i) {
			out = append(out, v)
		}
	}
	return out
}

func (r *runner) ttest(name string, a, b []float64) error {
	res, err := stats.WelchTTest(a, b)
	if err != nil {
		return r.skip("t-test "+name, err)
	}
	r.sum.TTests[name] = res
	r.opt.Log.WithFields(logrus.Fields{"t": res.T, "p": res.P, "df": res.DF}).
		Infof("✓ t-test %s: t=%.2f, p=%.4f", name, res.T, res.P)
	return nil
}

func (r *runner) hypothesisTests() error {
	if pos := r.positionColumn(); pos != "" && r.t.Index("xg") >= 0 {
		cells, _ := r.t.Column(pos)
		fw := r.sample("xg", func(i int) bool { return cells[i] == "FW" })
		df := r.sample("xg", func(i int) bool { return cells[i] == "DF" })
		if err := r.ttest("FW vs DF on xg", fw, df); err != nil {
			return err
		}
	} else if err := r.skip("t-test FW vs DF on xg", fmt.Errorf("position or xg column missing: %w", stats.ErrInsufficientData)); err != nil {
		return err
	}

	if minutes, ok := stats.Values(r.t, "minutes_90s"); ok && r.t.Index("goals") >= 0 {
		more := r.sample("goals", func(i int) bool { return !math.IsNaN(minutes[i]) && minutes[i] > 3 })
		less := r.sample("goals", func(i int) bool { return !math.IsNaN(minutes[i]) && minutes[i] <= 3 })
		return r.ttest("minutes_90s > 3 vs <= 3 on goals", more, less)
	}
	return r.skip("t-test minutes_90s on goals", fmt.Errorf("minutes_90s or goals column missing: %w", stats.ErrInsufficientData))
}

func (r *runner) numericMatrix() ([]string, *mat.Dense, error) {
	cols := stats.NumericColumns(r.t, r.opt.FillThreshold)
	if len(cols) < 2 {
		return nil, nil, fmt.Errorf("%d numeric columns at %.0f%% fill: %w", len(cols), r.opt.FillThreshold*100, stats.ErrInsufficientData)
	}
	x, err := stats.Matrix(r.t, cols)
	return cols, x, err
}

func (r *runner) projection() error {
	_, x, err := r.numericMatrix()
	if err != nil {
		return r.skip("pca and clustering", err)
	}
	proj, err := stats.PCA(x, 2)
	if err != nil {
		return r.skip("pca", err)
	}
	pc1, pc2 := mat.Col(nil, 0, proj.Scores), mat.Col(nil, 1, proj.Scores)
	r.opt.Log.WithFields(logrus.Fields{"pc1": proj.Explained[0], "pc2": proj.Explained[1]}).Debug("explained variance")

	p := r.path(PCAChart)
	if err := chart.Scatter(p, "PCA of players", "PC1", "PC2", pc1, pc2, nil); err != nil {
		return r.skip("pca chart", err)
	}
	r.wrote(p)

	cl, err := stats.KMeans(x, r.opt.Clusters, r.opt.Restarts, r.opt.Seed)
	if err != nil {
		return r.skip("clustering", err)
	}
	p = r.path(ClustersChart)
	if err := chart.Scatter(p, "K-means clusters on PCA", "PC1", "PC2", pc1, pc2, cl.Labels); err != nil {
		return r.skip("cluster chart", err)
	}
	r.wrote(p)
	return nil
}

func (r *runner) models() error {
	cols, x, err := r.numericMatrix()
	if err != nil {
		return r.skip("models", err)
	}
	for _, target := range []struct{ col, file string }{
		{"goals", "estatistico_ml_gols_reglinear.png"},
		{"assists", "estatistico_ml_assists_reglinear.png"},
	} {
		if err := r.regression(cols, x, target.col, target.file); err != nil {
			return err
		}
	}
	return r.classification(cols, x)
}

func columnIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// features drops the named columns from x.
func features(cols []string, x *mat.Dense, drop ...string) *mat.Dense {
	keep := stats.Without(cols, drop...)
	if len(keep) == 0 {
		return nil
	}
	r, _ := x.Dims()
	out := mat.NewDense(r, len(keep), nil)
	for j, name := range keep {
		src := columnIndex(cols, name)
		for i := 0; i < r; i++ {
			out.Set(i, j, x.At(i, src))
		}
	}
	return out
}

func (r *runner) split(x *mat.Dense, y []float64) (xTrain, xTest *mat.Dense, yTrain, yTest []float64, err error) {
	n, _ := x.Dims()
	train, test, err := stats.Split(n, r.opt.TestFraction, r.opt.Seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return stats.Rows(x, train), stats.Rows(x, test), stats.Pick(y, train), stats.Pick(y, test), nil
}

func (r *runner) regression(cols []string, x *mat.Dense, target, file string) error {
	what := "regression on " + target
	idx := columnIndex(cols, target)
	feats := features(cols, x, target)
	if idx < 0 || feats == nil {
		return r.skip(what, fmt.Errorf("%s not in numeric matrix: %w", target, stats.ErrInsufficientData))
	}
	y := mat.Col(nil, idx, x)
	xTrain, xTest, yTrain, yTest, err := r.split(feats, y)
	if err != nil {
		return r.skip(what, err)
	}
	m, err := stats.FitLinear(xTrain, yTrain, stats.DefaultRidge)
	if err != nil {
		return r.skip(what, fmt.Errorf("%v: %w", err, stats.ErrInsufficientData))
	}
	score := stats.ScoreRegression(yTest, m.Predict(xTest))
	r.sum.Regression[target] = score
	r.opt.Log.WithFields(logrus.Fields{"mae": score.MAE, "mse": score.MSE, "r2": score.R2}).
		Infof("✓ %s: MAE=%.2f MSE=%.2f R²=%.2f", what, score.MAE, score.MSE, score.R2)

	p := r.path(file)
	title := "Linear regression: " + Title(target)
	if err := chart.MetricBars(p, title, []string{"MAE", "MSE", "R²"}, []float64{score.MAE, score.MSE, score.R2}); err != nil {
		return r.skip(what+" chart", err)
	}
	r.wrote(p)
	return nil
}

func (r *runner) classification(cols []string, x *mat.Dense) error {
	const what = "classification goals > 0"
	idx := columnIndex(cols, "goals")
	feats := features(cols, x, "goals")
	if idx < 0 || feats == nil {
		return r.skip(what, fmt.Errorf("goals not in numeric matrix: %w", stats.ErrInsufficientData))
	}
	goals := mat.Col(nil, idx, x)
	y := make([]float64, len(goals))
	for i, g := range goals {
		if g > 0 {
			y[i] = 1
		}
	}
	xTrain, xTest, yTrain, yTest, err := r.split(feats, y)
	if err != nil {
		return r.skip(what, err)
	}
	m, err := stats.FitLogistic(xTrain, yTrain, logisticL2)
	if err != nil {
		if !errors.Is(err, stats.ErrSingleClass) {
			err = fmt.Errorf("%v: %w", err, stats.ErrInsufficientData)
		}
		return r.skip(what, err)
	}
	score := stats.ScoreClassification(yTest, m.Predict(xTest))
	r.sum.Classification = &score
	r.opt.Log.WithFields(logrus.Fields{"accuracy": score.Accuracy, "precision": score.Precision, "recall": score.Recall}).
		Infof("✓ %s: accuracy=%.2f precision=%.2f recall=%.2f", what, score.Accuracy, score.Precision, score.Recall)

	p := r.path(ClassificationFile)
	if err := chart.MetricBars(p, "Classification: scored a goal", []string{"Accuracy", "Precision", "Recall"},
		[]float64{score.Accuracy, score.Precision, score.Recall}); err != nil {
		return r.skip(what+" chart", err)
	}
	r.wrote(p)

	if err := r.writeTable(confusionTable(score.Confusion), ConfusionFile); err != nil {
		return err
	}
	grid := [][]float64{
		{float64(score.Confusion[0][0]), float64(score.Confusion[0][1])},
		{float64(score.Confusion[1][0]), float64(score.Confusion[1][1])},
	}
	maxCell := math.Max(math.Max(grid[0][0], grid[0][1]), math.Max(grid[1][0], grid[1][1]))
	p = r.path(ConfusionChart)
	if err := chart.Heatmap(p, "Confusion matrix: scored a goal", []string{"0", "1"}, grid, 0, maxCell); err != nil {
		return r.skip("confusion heatmap", err)
	}
	r.wrote(p)
	return nil
}

// confusionTable lays out counts with actual classes as rows.
func confusionTable(c [2][2]int) *table.Table {
	return table.New("confusion", []string{"actual", "predicted_0", "predicted_1"}, [][]string{
		{"0", strconv.Itoa(c[0][0]), strconv.Itoa(c[0][1])},
		{"1", strconv.Itoa(c[1][0]), strconv.Itoa(c[1][1])},
	})
}
