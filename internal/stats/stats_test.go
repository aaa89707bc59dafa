package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

func unified() *table.Table {
	return table.New("unified", []string{"player", "team", "position", "goals", "xg", "minutes_90s", "notes"}, [][]string{
		{"Bob", "X", "FW", "10", "8.1", "30", "a"},
		{"Ann", "Y", "DF", "1", "0.9", "28", ""},
		{"Cid", "Z", "FW", "7", "", "12", "b"},
		{"Dan", "X", "DF", "0", "0.4", "2", ""},
		{"Eve", "Y", "MF", "3", "2.2", "", "c"},
	})
}

func TestNumericColumnsAndMatrix(t *testing.T) {
	tb := unified()
	assert.Equal(t, []string{"goals", "xg", "minutes_90s"}, NumericColumns(tb, 0.8))
	assert.Equal(t, []string{"goals"}, NumericColumns(tb, 1))

	m, err := Matrix(tb, []string{"goals", "xg"})
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 0.0, m.At(2, 1), "missing filled with 0")
	assert.Equal(t, 8.1, m.At(0, 1))

	_, err = Matrix(table.New("e", []string{"goals"}, nil), []string{"goals"})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestTopN(t *testing.T) {
	tb := table.New("u", []string{"player", "goals"}, [][]string{
		{"Bob", "3"}, {"Ann", ""}, {"Cid", "5"}, {"Dan", "3"}, {"", "9"},
	})
	got, ok := TopN(tb, "goals", "player", 3)
	require.True(t, ok)
	assert.Equal(t, []Ranked{{"Cid", 5}, {"Bob", 3}, {"Dan", 3}}, got)

	_, ok = TopN(tb, "assists", "player", 3)
	assert.False(t, ok)
}

func TestWelchTTest(t *testing.T) {
	a := []float64{19.7, 20.4, 19.6, 17.8, 18.5, 18.9, 18.3, 18.9, 19.5, 21.95}
	b := []float64{28.3, 26.7, 20.1, 23.3, 25.2, 22.1, 17.7, 27.6, 20.6, 13.7, 23.2, 17.5, 20.6, 18.0, 23.9, 21.6, 24.3, 20.4, 23.9, 13.3}
	res, err := WelchTTest(a, b)
	require.NoError(t, err)
	assert.InDelta(t, -2.2479, res.T, 1e-3)
	assert.InDelta(t, 24.381, res.DF, 1e-2)
	assert.InDelta(t, 0.0339, res.P, 1e-3)

	withGaps := append([]float64{math.NaN()}, a...)
	gapped, err := WelchTTest(withGaps, append(b, math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, res, gapped)

	_, err = WelchTTest([]float64{1, math.NaN()}, b)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = WelchTTest([]float64{1}, b)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = WelchTTest([]float64{1, 1}, []float64{2, 2})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPCA(t *testing.T) {
	// points on the line y = 2x plus a small orthogonal wobble
	x := mat.NewDense(5, 2, []float64{
		1, 2.1,
		2, 3.9,
		3, 6.1,
		4, 7.9,
		5, 10.0,
	})
	p, err := PCA(x, 2)
	require.NoError(t, err)
	r, c := p.Scores.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	assert.Greater(t, p.Explained[0], 0.99)
	assert.InDelta(t, 1.0, p.Explained[0]+p.Explained[1], 1e-9)

	var sum float64
	for i := 0; i < r; i++ {
		sum += p.Scores.At(i, 0)
	}
	assert.InDelta(t, 0, sum, 1e-9, "scores are centered")

	_, err = PCA(mat.NewDense(1, 2, []float64{1, 2}), 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	data := []float64{
		0, 0, 0.1, 0.2, -0.1, 0.1,
		10, 10, 10.2, 9.9, 9.8, 10.1,
	}
	x := mat.NewDense(6, 2, data)
	c, err := KMeans(x, 2, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, c.Labels[0], c.Labels[1])
	assert.Equal(t, c.Labels[0], c.Labels[2])
	assert.Equal(t, c.Labels[3], c.Labels[4])
	assert.Equal(t, c.Labels[3], c.Labels[5])
	assert.NotEqual(t, c.Labels[0], c.Labels[3])
	assert.Less(t, c.Inertia, 1.0)

	again, err := KMeans(x, 2, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, c.Labels, again.Labels, "same seed, same labels")

	_, err = KMeans(x, 7, 1, 42)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSplit(t *testing.T) {
	train, test, err := Split(10, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)
	seen := map[int]bool{}
	for _, i := range append(append([]int(nil), train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train2, test2, _ := Split(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, _, err = Split(1, 0.2, 42)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, _, err = Split(10, 1.5, 42)
	assert.Error(t, err)
}

func TestFitLinearRecoversPlane(t *testing.T) {
	// y = 3 + 2a - b
	x := mat.NewDense(6, 2, []float64{
		1, 0,
		2, 1,
		3, 5,
		4, 2,
		5, 7,
		6, 3,
	})
	y := make([]float64, 6)
	for i := range y {
		y[i] = 3 + 2*x.At(i, 0) - x.At(i, 1)
	}
	m, err := FitLinear(x, y, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3, m.Intercept, 1e-4)
	assert.InDelta(t, 2, m.Coef[0], 1e-4)
	assert.InDelta(t, -1, m.Coef[1], 1e-4)

	score := ScoreRegression(y, m.Predict(x))
	assert.InDelta(t, 0, score.MAE, 1e-4)
	assert.InDelta(t, 1, score.R2, 1e-6)
}

func TestFitLinearCollinearStillSolves(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	y := []float64{2, 4, 6, 8}
	m, err := FitLinear(x, y, 0)
	require.NoError(t, err)
	pred := m.Predict(x)
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-3)
	}
}

func TestFitLogistic(t *testing.T) {
	x := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 6, 7, 8, 9})
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	m, err := FitLogistic(x, y, 1)
	require.NoError(t, err)
	assert.Greater(t, m.Coef[0], 0.0)
	assert.Equal(t, y, m.Predict(x))

	prob := m.Probability(mat.NewDense(1, 1, []float64{4.5}))
	assert.InDelta(t, 0.5, prob[0], 0.05)

	_, err = FitLogistic(x, []float64{1, 1, 1, 1, 1, 1, 1, 1}, 1)
	assert.ErrorIs(t, err, ErrSingleClass)
	_, err = FitLogistic(x, []float64{0, 2, 0, 0, 1, 1, 1, 1}, 1)
	assert.Error(t, err)
}

func TestScoreClassification(t *testing.T) {
	truth := []float64{1, 1, 0, 0, 1}
	pred := []float64{1, 0, 0, 1, 1}
	m := ScoreClassification(truth, pred)
	assert.Equal(t, [2][2]int{{1, 1}, {1, 2}}, m.Confusion)
	assert.InDelta(t, 0.6, m.Accuracy, 1e-12)
	assert.InDelta(t, 2.0/3, m.Precision, 1e-12)
	assert.InDelta(t, 2.0/3, m.Recall, 1e-12)

	none := ScoreClassification([]float64{0, 0}, []float64{0, 0})
	assert.Equal(t, 0.0, none.Precision)
	assert.Equal(t, 1.0, none.Accuracy)
}

func TestScoreRegressionConstantTruth(t *testing.T) {
	assert.Equal(t, 1.0, ScoreRegression([]float64{2, 2}, []float64{2, 2}).R2)
	assert.Equal(t, 0.0, ScoreRegression([]float64{2, 2}, []float64{1, 3}).R2)
	assert.True(t, math.IsNaN(ScoreRegression(nil, nil).MAE))
}
