package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTest is the outcome of a two-sample test.
type TTest struct {
	T  float64
	DF float64
	P  float64
	NA int
	NB int
}

// WelchTTest compares the means of a and b without assuming equal
// variances. P is two-sided. NaN entries are ignored; each sample needs at
// least two remaining values and the samples may not both be constant.
func WelchTTest(a, b []float64) (TTest, error) {
	a, b = DropNaN(a), DropNaN(b)
	res := TTest{NA: len(a), NB: len(b)}
	if len(a) < 2 || len(b) < 2 {
		return res, fmt.Errorf("t-test with %d and %d observations: %w", len(a), len(b), ErrInsufficientData)
	}
	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)
	sa, sb := va/float64(len(a)), vb/float64(len(b))
	se := sa + sb
	if se == 0 {
		return res, fmt.Errorf("t-test on constant samples: %w", ErrInsufficientData)
	}
	res.T = (ma - mb) / math.Sqrt(se)
	res.DF = se * se / (sa*sa/float64(len(a)-1) + sb*sb/float64(len(b)-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.P = 2 * dist.CDF(-math.Abs(res.T))
	return res, nil
}
