package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRidge keeps the normal equations solvable when features are
// collinear or constant.
const DefaultRidge = 1e-6

// LinearModel is an ordinary least-squares fit with an intercept.
type LinearModel struct {
	Intercept float64
	Coef      []float64
}

// FitLinear solves (XcᵀXc + ridge·I)β = Xcᵀyc on centered data and
// recovers the intercept from the means.
func FitLinear(x *mat.Dense, y []float64, ridge float64) (*LinearModel, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("linear fit: %d rows but %d targets", r, len(y))
	}
	if r < 2 || c < 1 {
		return nil, ErrInsufficientData
	}
	if ridge <= 0 {
		ridge = DefaultRidge
	}
	xc := center(x)
	means := columnMeans(x)
	ym := stat.Mean(y, nil)
	yc := make([]float64, r)
	for i, v := range y {
		yc[i] = v - ym
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, xc.T())
	for i := 0; i < c; i++ {
		xtx.SetSym(i, i, xtx.At(i, i)+ridge)
	}
	var xty mat.VecDense
	xty.MulVec(xc.T(), mat.NewVecDense(r, yc))

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, errors.New("linear fit: normal equations not positive definite")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, fmt.Errorf("linear fit: %w", err)
	}

	m := &LinearModel{Coef: make([]float64, c), Intercept: ym}
	for j := 0; j < c; j++ {
		m.Coef[j] = beta.AtVec(j)
		m.Intercept -= m.Coef[j] * means[j]
	}
	return m, nil
}

// Predict applies the model to each row of x.
func (m *LinearModel) Predict(x mat.Matrix) []float64 {
	r, c := x.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := m.Intercept
		for j := 0; j < c && j < len(m.Coef); j++ {
			v += m.Coef[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out
}

func columnMeans(x mat.Matrix) []float64 {
	r, c := x.Dims()
	out := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		out[j] = stat.Mean(col, nil)
	}
	return out
}
