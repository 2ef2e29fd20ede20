package forecast

import (
	"errors"
	"fmt"

	"campus-energy/internal/eval"
	"campus-energy/internal/timeseries"
)

// BacktestResult collects out-of-sample predictions from a rolling-origin
// evaluation, aligned with the actuals they predicted.
type BacktestResult struct {
	Model       string
	Predictions []float64
	Actuals     []float64
	Quantiles   []float64
	Bands       [][]float64 // per-sample quantile predictions
	Point       eval.PointMetrics
	MeanPinball float64
	CRPS        float64
}

// Backtest walks forecast origins through the holdout part of the series.
// trainLen is the initial training window; at each origin the factory's
// model is refitted on all history up to the origin and asked for horizon
// steps, which are scored against the actuals.
func Backtest(s *timeseries.Series, factory func() Forecaster, trainLen, horizon int, quantiles []float64) (*BacktestResult, error) {
	if trainLen < 1 || horizon < 1 {
		return nil, errors.New("trainLen and horizon must be >= 1")
	}
	if trainLen+horizon > s.Len() {
		return nil, fmt.Errorf("series has %d values, need > %d", s.Len(), trainLen+horizon)
	}
	if len(quantiles) == 0 {
		quantiles = DefaultQuantiles
	}

	res := &BacktestResult{Quantiles: quantiles}
	for origin := trainLen; origin+horizon <= s.Len(); origin += horizon {
		train, err := s.Slice(0, origin)
		if err != nil {
			return nil, err
		}
		m := factory()
		if res.Model == "" {
			res.Model = m.Name()
		}
		if err := m.Fit(train); err != nil {
			return nil, fmt.Errorf("fit at origin %d: %w", origin, err)
		}
		preds, err := m.Predict(horizon)
		if err != nil {
			return nil, fmt.Errorf("predict at origin %d: %w", origin, err)
		}
		bands, err := QuantileBands(preds, m.Residuals(), quantiles)
		if err != nil {
			return nil, fmt.Errorf("quantile bands at origin %d: %w", origin, err)
		}

		res.Predictions = append(res.Predictions, preds...)
		res.Actuals = append(res.Actuals, s.Values[origin:origin+horizon]...)
		res.Bands = append(res.Bands, bands...)
	}

	var err error
	res.Point, err = eval.Point(res.Predictions, res.Actuals)
	if err != nil {
		return nil, err
	}
	res.MeanPinball, err = eval.MeanPinball(res.Bands, res.Actuals, quantiles)
	if err != nil {
		return nil, err
	}
	res.CRPS, err = eval.CRPS(res.Bands, res.Actuals, quantiles)
	if err != nil {
		return nil, err
	}
	return res, nil
}
