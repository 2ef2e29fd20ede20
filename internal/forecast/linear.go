package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"campus-energy/internal/timeseries"
)

// LinearAR is an autoregression on a sparse set of lags, fitted by
// ridge-regularized least squares. Lags may be chosen by hand (daily and
// weekly lags are good demand defaults) or selected from the PACF with
// SelectLags.
//
// Exog, when set, must have one row per series index; the same columns
// must be supplied for the forecast horizon via FutureExog before
// Predict.
type LinearAR struct {
	Lags  []int
	Ridge float64

	Exog       [][]float64
	FutureExog [][]float64

	coef      []float64 // [intercept, lag coefs..., exog coefs...]
	history   []float64
	residuals []float64
}

func NewLinearAR(lags []int, ridge float64) *LinearAR {
	return &LinearAR{Lags: lags, Ridge: ridge}
}

// AutoLags picks lags from the PACF of the series with the given
// threshold, restricted to lags above startAfter. It falls back to lag 1
// when nothing clears the threshold.
func AutoLags(s *timeseries.Series, maxLag int, threshold float64, startAfter int) ([]int, error) {
	lags, err := timeseries.SelectLags(s.Values, maxLag, threshold, startAfter)
	if err != nil {
		return nil, err
	}
	if len(lags) == 0 {
		lags = []int{startAfter + 1}
	}
	return lags, nil
}

func (m *LinearAR) Name() string { return "linear-ar" }

func (m *LinearAR) Fit(s *timeseries.Series) error {
	if len(m.Lags) == 0 {
		return errors.New("no lags configured")
	}
	if m.Ridge < 0 {
		return errors.New("ridge must be >= 0")
	}
	lagRows, maxLag, err := timeseries.LagMatrix(s.Values, m.Lags)
	if err != nil {
		return err
	}
	n := len(lagRows)
	nExog := 0
	if m.Exog != nil {
		if len(m.Exog) != s.Len() {
			return fmt.Errorf("exog has %d rows, series has %d", len(m.Exog), s.Len())
		}
		nExog = len(m.Exog[0])
	}
	nFeat := 1 + len(m.Lags) + nExog

	X := mat.NewDense(n, nFeat, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		t := i + maxLag
		X.Set(i, 0, 1)
		for j, v := range lagRows[i] {
			X.Set(i, 1+j, v)
		}
		for j := 0; j < nExog; j++ {
			X.Set(i, 1+len(m.Lags)+j, m.Exog[t][j])
		}
		y.SetVec(i, s.Values[t])
	}

	// Normal equations with a ridge penalty (intercept unpenalized).
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for j := 1; j < nFeat; j++ {
		xtx.Set(j, j, xtx.At(j, j)+m.Ridge)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("solving normal equations: %w", err)
	}

	m.coef = make([]float64, nFeat)
	for j := range m.coef {
		m.coef[j] = beta.AtVec(j)
	}
	m.history = append(m.history[:0], s.Values...)

	m.residuals = m.residuals[:0]
	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	for i := 0; i < n; i++ {
		m.residuals = append(m.residuals, y.AtVec(i)-fitted.AtVec(i))
	}
	return nil
}

// Predict iterates one-step forecasts, feeding each prediction back into
// the lag window.
func (m *LinearAR) Predict(horizon int) ([]float64, error) {
	if m.coef == nil {
		return nil, errors.New("model not fitted")
	}
	if horizon < 1 {
		return nil, errors.New("horizon must be >= 1")
	}
	nExog := 0
	if m.Exog != nil {
		nExog = len(m.Exog[0])
		if len(m.FutureExog) < horizon {
			return nil, fmt.Errorf("need %d future exog rows, have %d", horizon, len(m.FutureExog))
		}
	}

	extended := append([]float64(nil), m.history...)
	out := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		t := len(extended)
		v := m.coef[0]
		for j, lag := range m.Lags {
			idx := t - lag
			if idx < 0 {
				return nil, fmt.Errorf("history too short for lag %d", lag)
			}
			v += m.coef[1+j] * extended[idx]
		}
		for j := 0; j < nExog; j++ {
			v += m.coef[1+len(m.Lags)+j] * m.FutureExog[h][j]
		}
		out[h] = v
		extended = append(extended, v)
	}
	return out, nil
}

func (m *LinearAR) Residuals() []float64 { return m.residuals }
