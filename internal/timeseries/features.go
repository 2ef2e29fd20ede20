package timeseries

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SupervisedSet is a lag/lead design matrix for one target variable:
// X rows are [y_t, y_t-1, .., y_t-lag] (optionally trimmed by an
// operational lag when the freshest observations are not yet published),
// Y rows are [y_t+1, .., y_t+lead].
type SupervisedSet struct {
	X [][]float64
	Y [][]float64
}

// BuildSupervised constructs a supervised set for rolling-horizon
// forecasting. operationalLag drops that many of the most recent lag
// columns, modelling the delay in data publication.
func BuildSupervised(y []float64, lag, lead, operationalLag int) (SupervisedSet, error) {
	var set SupervisedSet
	if lag < 0 || lead < 1 {
		return set, errors.New("lag must be >= 0 and lead >= 1")
	}
	if operationalLag < 0 || operationalLag > lag {
		return set, fmt.Errorf("operational lag %d out of range [0, %d]", operationalLag, lag)
	}
	n := len(y) - lag - lead
	if n <= 0 {
		return set, fmt.Errorf("series too short: %d values for lag=%d lead=%d", len(y), lag, lead)
	}

	set.X = make([][]float64, n)
	set.Y = make([][]float64, n)
	for i := 0; i < n; i++ {
		t := i + lag
		row := make([]float64, 0, lag+1-operationalLag)
		for l := operationalLag; l <= lag; l++ {
			row = append(row, y[t-l])
		}
		set.X[i] = row

		leads := make([]float64, lead)
		for l := 1; l <= lead; l++ {
			leads[l-1] = y[t+l]
		}
		set.Y[i] = leads
	}
	return set, nil
}

// ACF returns sample autocorrelations for lags 0..maxLag.
func ACF(y []float64, maxLag int) ([]float64, error) {
	if maxLag < 0 {
		return nil, errors.New("maxLag must be >= 0")
	}
	if len(y) <= maxLag {
		return nil, fmt.Errorf("series length %d must exceed maxLag %d", len(y), maxLag)
	}
	mean := stat.Mean(y, nil)
	denom := 0.0
	for _, v := range y {
		denom += (v - mean) * (v - mean)
	}
	if denom == 0 {
		return nil, errors.New("series is constant")
	}

	out := make([]float64, maxLag+1)
	out[0] = 1
	for l := 1; l <= maxLag; l++ {
		num := 0.0
		for t := l; t < len(y); t++ {
			num += (y[t] - mean) * (y[t-l] - mean)
		}
		out[l] = num / denom
	}
	return out, nil
}

// PACF returns partial autocorrelations for lags 0..maxLag via the
// Durbin-Levinson recursion on the sample ACF.
func PACF(y []float64, maxLag int) ([]float64, error) {
	acf, err := ACF(y, maxLag)
	if err != nil {
		return nil, err
	}
	pacf := make([]float64, maxLag+1)
	pacf[0] = 1
	if maxLag == 0 {
		return pacf, nil
	}

	phi := make([]float64, maxLag+1)
	prev := make([]float64, maxLag+1)
	phi[1] = acf[1]
	pacf[1] = acf[1]
	v := 1 - acf[1]*acf[1]

	for k := 2; k <= maxLag; k++ {
		copy(prev, phi)
		num := acf[k]
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
		}
		if v <= 0 {
			// Degenerate (near-perfectly predictable) series.
			pacf[k] = 0
			continue
		}
		phi[k] = num / v
		for j := 1; j < k; j++ {
			phi[j] = prev[j] - phi[k]*prev[k-j]
		}
		v *= 1 - phi[k]*phi[k]
		pacf[k] = phi[k]
	}
	return pacf, nil
}

// SelectLags picks the lags whose |PACF| exceeds threshold, skipping lags
// at or below startAfter. For day-ahead auction signals set startAfter to
// one day's worth of steps minus one plus the operational lag, so only
// information available at auction time is used.
func SelectLags(y []float64, maxLag int, threshold float64, startAfter int) ([]int, error) {
	pacf, err := PACF(y, maxLag)
	if err != nil {
		return nil, err
	}
	var lags []int
	for l := 1; l <= maxLag; l++ {
		if l <= startAfter {
			continue
		}
		if math.Abs(pacf[l]) > threshold {
			lags = append(lags, l)
		}
	}
	return lags, nil
}

// DayAheadStartAfter returns the lag cutoff for batch day-ahead
// forecasting: lags within the last day (plus the publication delay) are
// unavailable when the auction closes.
func DayAheadStartAfter(stepsPerDay, operationalLag int) int {
	return stepsPerDay - 1 + operationalLag
}

// LagMatrix builds rows of the selected lagged values. Row i corresponds
// to y index i+maxSelected, so rows align with y[maxSelected:].
func LagMatrix(y []float64, lags []int) ([][]float64, int, error) {
	if len(lags) == 0 {
		return nil, 0, errors.New("no lags selected")
	}
	maxLag := 0
	for _, l := range lags {
		if l < 1 {
			return nil, 0, fmt.Errorf("invalid lag %d", l)
		}
		if l > maxLag {
			maxLag = l
		}
	}
	if len(y) <= maxLag {
		return nil, 0, fmt.Errorf("series length %d must exceed max lag %d", len(y), maxLag)
	}
	rows := make([][]float64, len(y)-maxLag)
	for i := range rows {
		t := i + maxLag
		row := make([]float64, len(lags))
		for j, l := range lags {
			row[j] = y[t-l]
		}
		rows[i] = row
	}
	return rows, maxLag, nil
}

// CrossCorr returns corr(x_t, y_{t-l}) for l = 0..maxLag.
func CrossCorr(x, y []float64, maxLag int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) <= maxLag {
		return nil, fmt.Errorf("series length %d must exceed maxLag %d", len(x), maxLag)
	}
	out := make([]float64, maxLag+1)
	for l := 0; l <= maxLag; l++ {
		out[l] = stat.Correlation(x[l:], y[:len(y)-l], nil)
	}
	return out, nil
}
