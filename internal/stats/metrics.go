package stats

import "math"

// RegressionMetrics scores continuous predictions.
type RegressionMetrics struct {
	MAE float64
	MSE float64
	R2  float64
}

// ScoreRegression compares predictions with the truth. A constant truth
// scores R² 1 when predicted exactly and 0 otherwise.
func ScoreRegression(truth, pred []float64) RegressionMetrics {
	var m RegressionMetrics
	n := len(truth)
	if n == 0 || n != len(pred) {
		return RegressionMetrics{MAE: math.NaN(), MSE: math.NaN(), R2: math.NaN()}
	}
	var mean float64
	for _, v := range truth {
		mean += v
	}
	mean /= float64(n)
	var ssRes, ssTot float64
	for i := range truth {
		e := truth[i] - pred[i]
		m.MAE += math.Abs(e)
		ssRes += e * e
		ssTot += (truth[i] - mean) * (truth[i] - mean)
	}
	m.MAE /= float64(n)
	m.MSE = ssRes / float64(n)
	switch {
	case ssTot > 0:
		m.R2 = 1 - ssRes/ssTot
	case ssRes == 0:
		m.R2 = 1
	}
	return m
}

// ClassificationMetrics scores binary predictions. Confusion is indexed
// [actual][predicted].
type ClassificationMetrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	Confusion [2][2]int
}

// ScoreClassification treats 1 as the positive class. Precision and recall
// are 0 when undefined.
func ScoreClassification(truth, pred []float64) ClassificationMetrics {
	var m ClassificationMetrics
	for i := range truth {
		if i >= len(pred) {
			break
		}
		m.Confusion[label(truth[i])][label(pred[i])]++
	}
	tn, fp := m.Confusion[0][0], m.Confusion[0][1]
	fn, tp := m.Confusion[1][0], m.Confusion[1][1]
	if total := tn + fp + fn + tp; total > 0 {
		m.Accuracy = float64(tn+tp) / float64(total)
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	return m
}

func label(v float64) int {
	if v > 0 {
		return 1
	}
	return 0
}
