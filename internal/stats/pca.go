package stats

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection holds observations projected onto their leading principal
// components.
type Projection struct {
	Scores *mat.Dense
	// Explained is the variance ratio captured by each kept component.
	Explained []float64
}

// PCA centers x and projects it onto its first k principal components.
func PCA(x *mat.Dense, k int) (*Projection, error) {
	r, c := x.Dims()
	if r < 2 || c < k || k < 1 {
		return nil, ErrInsufficientData
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("pca: decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)
	if _, vc := vecs.Dims(); vc < k {
		return nil, ErrInsufficientData
	}

	centered := center(x)
	scores := mat.NewDense(r, k, nil)
	scores.Mul(centered, vecs.Slice(0, c, 0, k))

	var total float64
	for _, v := range vars {
		total += v
	}
	explained := make([]float64, k)
	if total > 0 {
		for i := 0; i < k; i++ {
			explained[i] = vars[i] / total
		}
	}
	return &Projection{Scores: scores, Explained: explained}, nil
}

// center returns x with each column's mean subtracted.
func center(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.DenseCopyOf(x)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		m := stat.Mean(col, nil)
		for i := 0; i < r; i++ {
			out.Set(i, j, out.At(i, j)-m)
		}
	}
	return out
}
