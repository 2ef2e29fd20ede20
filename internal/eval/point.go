// Package eval implements forecast verification: point error metrics,
// quantile/probabilistic scores and tail-risk summaries.
package eval

import (
	"errors"
	"math"
)

// PointMetrics summarizes point forecast accuracy.
type PointMetrics struct {
	MAPE float64
	RMSE float64
	MAE  float64
}

// Point computes MAPE, RMSE and MAE over paired predictions and actuals.
// MAPE is undefined where the actual is zero; those pairs are skipped for
// MAPE only.
func Point(predictions, actuals []float64) (PointMetrics, error) {
	var m PointMetrics
	if len(predictions) != len(actuals) {
		return m, errors.New("shape mismatch")
	}
	if len(predictions) == 0 {
		return m, errors.New("no samples")
	}

	var sumAbs, sumSq, sumPct float64
	nPct := 0
	for i, p := range predictions {
		a := actuals[i]
		d := p - a
		sumAbs += math.Abs(d)
		sumSq += d * d
		if a != 0 {
			sumPct += math.Abs(d / a)
			nPct++
		}
	}
	n := float64(len(predictions))
	m.MAE = sumAbs / n
	m.RMSE = math.Sqrt(sumSq / n)
	if nPct > 0 {
		m.MAPE = sumPct / float64(nPct)
	}
	return m, nil
}

// Brier computes the mean squared error of probability forecasts of a
// binary event.
func Brier(predictions, actuals []float64) (float64, error) {
	if len(predictions) != len(actuals) {
		return 0, errors.New("shape mismatch")
	}
	if len(predictions) == 0 {
		return 0, errors.New("no samples")
	}
	sum := 0.0
	for i, p := range predictions {
		d := p - actuals[i]
		sum += d * d
	}
	return sum / float64(len(predictions)), nil
}
