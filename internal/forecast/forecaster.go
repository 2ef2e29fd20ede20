// Package forecast fits time-series models to campus signals and produces
// out-of-sample point and quantile predictions.
package forecast

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"campus-energy/internal/timeseries"
)

// Forecaster is a point-forecast model. Fit learns from a history series;
// Predict extends it by horizon steps beyond the fitted history.
type Forecaster interface {
	Name() string
	Fit(s *timeseries.Series) error
	Predict(horizon int) ([]float64, error)
	// Residuals returns in-sample one-step residuals (actual - fitted),
	// used to dress point forecasts with empirical quantile bands.
	Residuals() []float64
}

// DefaultQuantiles is the probabilistic evaluation grid used across the
// project.
var DefaultQuantiles = []float64{0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95}

// QuantileBands dresses point forecasts with empirical residual
// quantiles: out[i][q] = points[i] + Q_residuals(quantiles[q]).
// Rows are sorted ascending to guard against quantile crossing.
func QuantileBands(points, residuals, quantiles []float64) ([][]float64, error) {
	if len(residuals) < 2 {
		return nil, errors.New("not enough residuals for quantile bands")
	}
	if len(quantiles) == 0 {
		return nil, errors.New("no quantiles")
	}
	sorted := append([]float64(nil), residuals...)
	sort.Float64s(sorted)

	offsets := make([]float64, len(quantiles))
	for i, q := range quantiles {
		if q <= 0 || q >= 1 {
			return nil, errors.New("quantiles must be in (0, 1)")
		}
		offsets[i] = stat.Quantile(q, stat.Empirical, sorted, nil)
	}

	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, len(offsets))
		for j, o := range offsets {
			row[j] = p + o
		}
		sort.Float64s(row)
		out[i] = row
	}
	return out, nil
}
