package stats

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const kmeansMaxIter = 300

// Clustering is the best k-means solution found.
type Clustering struct {
	Labels    []int
	Centroids [][]float64
	// Inertia is the sum of squared distances to the assigned centroid.
	Inertia float64
}

// KMeans partitions the rows of x into k clusters. Each of restarts runs is
// seeded with k-means++ from a generator derived from seed; the run with the
// lowest inertia wins.
func KMeans(x *mat.Dense, k, restarts int, seed int64) (*Clustering, error) {
	r, _ := x.Dims()
	if k < 1 || r < k {
		return nil, fmt.Errorf("k-means with k=%d on %d rows: %w", k, r, ErrInsufficientData)
	}
	if restarts < 1 {
		restarts = 1
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}
	rng := rand.New(rand.NewSource(seed))
	var best *Clustering
	for run := 0; run < restarts; run++ {
		c := lloyd(rows, seedPlusPlus(rows, k, rng))
		if best == nil || c.Inertia < best.Inertia {
			best = c
		}
	}
	return best, nil
}

func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))
	d2 := make([]float64, len(rows))
	for len(centroids) < k {
		var total float64
		for i, p := range rows {
			d2[i] = nearest(p, centroids).dist
			total += d2[i]
		}
		if total == 0 {
			centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))
			continue
		}
		target := rng.Float64() * total
		pick := len(rows) - 1
		for i, d := range d2 {
			target -= d
			if target <= 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, clone(rows[pick]))
	}
	return centroids
}

func lloyd(rows [][]float64, centroids [][]float64) *Clustering {
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = -1
	}
	dim := len(rows[0])
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, p := range rows {
			if n := nearest(p, centroids).idx; n != labels[i] {
				labels[i] = n
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range rows {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range centroids {
			// an emptied cluster keeps its previous centroid
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), sums[c])
				centroids[c] = sums[c]
			}
		}
	}
	var inertia float64
	for i, p := range rows {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return &Clustering{Labels: labels, Centroids: centroids, Inertia: inertia}
}

type hit struct {
	idx  int
	dist float64
}

func nearest(p []float64, centroids [][]float64) hit {
	h := hit{idx: 0, dist: math.Inf(1)}
	for c, ctr := range centroids {
		if d := sqDist(p, ctr); d < h.dist {
			h = hit{idx: c, dist: d}
		}
	}
	return h
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(xs []float64) []float64 { return append([]float64(nil), xs...) }
