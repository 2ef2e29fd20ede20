package forecast

import (
	"errors"
	"fmt"

	"campus-energy/internal/timeseries"
)

// SeasonalNaive forecasts each step as the value one season earlier.
// Period is in steps: one day is 96 for 15-minute data, a week 672.
type SeasonalNaive struct {
	Period int

	history   []float64
	residuals []float64
}

func NewSeasonalNaive(period int) *SeasonalNaive {
	return &SeasonalNaive{Period: period}
}

func (m *SeasonalNaive) Name() string { return "seasonal-naive" }

func (m *SeasonalNaive) Fit(s *timeseries.Series) error {
	if m.Period < 1 {
		return errors.New("period must be >= 1")
	}
	if s.Len() < 2*m.Period {
		return fmt.Errorf("need at least %d values, got %d", 2*m.Period, s.Len())
	}
	m.history = append(m.history[:0], s.Values...)
	m.residuals = m.residuals[:0]
	for t := m.Period; t < len(m.history); t++ {
		m.residuals = append(m.residuals, m.history[t]-m.history[t-m.Period])
	}
	return nil
}

func (m *SeasonalNaive) Predict(horizon int) ([]float64, error) {
	if len(m.history) == 0 {
		return nil, errors.New("model not fitted")
	}
	if horizon < 1 {
		return nil, errors.New("horizon must be >= 1")
	}
	out := make([]float64, horizon)
	n := len(m.history)
	for h := 0; h < horizon; h++ {
		// Walk back whole seasons until we land in the history.
		idx := n + h
		for idx >= n {
			idx -= m.Period
		}
		out[h] = m.history[idx]
	}
	return out, nil
}

func (m *SeasonalNaive) Residuals() []float64 { return m.residuals }
