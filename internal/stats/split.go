package stats

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Split shuffles 0..n-1 with seed and cuts off ceil(testFraction*n) indices
// for testing. Both sides must be non-empty.
func Split(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %.2f outside (0, 1)", testFraction)
	}
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("split %d rows: %w", n, ErrInsufficientData)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Rows gathers the given rows of x.
func Rows(x mat.Matrix, idxs []int) *mat.Dense {
	_, c := x.Dims()
	out := mat.NewDense(len(idxs), c, nil)
	for i, idx := range idxs {
		for j := 0; j < c; j++ {
			out.Set(i, j, x.At(idx, j))
		}
	}
	return out
}

// Pick gathers the given entries of ys.
func Pick(ys []float64, idxs []int) []float64 {
	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		out[i] = ys[idx]
	}
	return out
}
