package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrSingleClass is returned when the training labels hold one class only.
var ErrSingleClass = errors.New("training labels contain a single class")

const (
	logisticMaxIter = 50
	logisticTol     = 1e-8
)

// LogisticModel is a binary classifier over standardized features.
type LogisticModel struct {
	Intercept float64
	Coef      []float64
	mean      []float64
	scale     []float64
}

// FitLogistic fits an L2-penalized logistic regression by Newton-Raphson.
// Labels must be 0 or 1. Features are standardized with training moments;
// the intercept is not penalized.
func FitLogistic(x *mat.Dense, y []float64, l2 float64) (*LogisticModel, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("logistic fit: %d rows but %d labels", r, len(y))
	}
	if r < 2 || c < 1 {
		return nil, ErrInsufficientData
	}
	var pos int
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("logistic fit: label %v is not 0 or 1", v)
		}
		if v == 1 {
			pos++
		}
	}
	if pos == 0 || pos == r {
		return nil, ErrSingleClass
	}

	m := &LogisticModel{mean: make([]float64, c), scale: make([]float64, c)}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		mu, sd := stat.MeanStdDev(col, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		m.mean[j], m.scale[j] = mu, sd
	}
	// design matrix with a leading intercept column
	d := c + 1
	z := mat.NewDense(r, d, nil)
	for i := 0; i < r; i++ {
		z.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			z.Set(i, j+1, (x.At(i, j)-m.mean[j])/m.scale[j])
		}
	}

	w := mat.NewVecDense(d, nil)
	p := make([]float64, r)
	for iter := 0; iter < logisticMaxIter; iter++ {
		var eta mat.VecDense
		eta.MulVec(z, w)
		grad := mat.NewVecDense(d, nil)
		hess := mat.NewSymDense(d, nil)
		for i := 0; i < r; i++ {
			p[i] = sigmoid(eta.AtVec(i))
			wt := p[i] * (1 - p[i])
			row := z.RawRowView(i)
			for a := 0; a < d; a++ {
				grad.SetVec(a, grad.AtVec(a)+(p[i]-y[i])*row[a])
				for b := a; b < d; b++ {
					hess.SetSym(a, b, hess.At(a, b)+wt*row[a]*row[b])
				}
			}
		}
		for a := 1; a < d; a++ {
			grad.SetVec(a, grad.AtVec(a)+l2*w.AtVec(a))
			hess.SetSym(a, a, hess.At(a, a)+l2)
		}
		// tiny jitter keeps separable data factorizable
		for a := 0; a < d; a++ {
			hess.SetSym(a, a, hess.At(a, a)+1e-9)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return nil, errors.New("logistic fit: hessian not positive definite")
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, grad); err != nil {
			return nil, fmt.Errorf("logistic fit: %w", err)
		}
		w.SubVec(w, &step)
		if mat.Norm(&step, 2) < logisticTol {
			break
		}
	}

	m.Intercept = w.AtVec(0)
	m.Coef = make([]float64, c)
	for j := 0; j < c; j++ {
		m.Coef[j] = w.AtVec(j + 1)
	}
	return m, nil
}

// Probability returns P(y=1) for each row of x.
func (m *LogisticModel) Probability(x mat.Matrix) []float64 {
	r, c := x.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		eta := m.Intercept
		for j := 0; j < c && j < len(m.Coef); j++ {
			eta += m.Coef[j] * (x.At(i, j) - m.mean[j]) / m.scale[j]
		}
		out[i] = sigmoid(eta)
	}
	return out
}

// Predict labels rows 1 when the probability is at least 0.5.
func (m *LogisticModel) Predict(x mat.Matrix) []float64 {
	prob := m.Probability(x)
	out := make([]float64, len(prob))
	for i, p := range prob {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
