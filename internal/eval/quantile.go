package eval

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// QuantileForecast is one row of quantile predictions. Values must be
// sorted ascending and aligned with the quantile levels they estimate.
type QuantileForecast [][]float64

// Pinball returns the pinball (quantile) loss per sample per quantile.
// preds[i][q] estimates the quantiles[q] quantile of targets[i].
func Pinball(preds QuantileForecast, targets, quantiles []float64) ([][]float64, error) {
	if err := checkQuantiles(preds, targets, quantiles); err != nil {
		return nil, err
	}
	out := make([][]float64, len(targets))
	for i, row := range preds {
		losses := make([]float64, len(quantiles))
		for q, tau := range quantiles {
			diff := targets[i] - row[q]
			if diff >= 0 {
				losses[q] = tau * diff
			} else {
				losses[q] = (tau - 1) * diff
			}
		}
		out[i] = losses
	}
	return out, nil
}

// MeanPinball averages the pinball loss over samples and quantiles.
func MeanPinball(preds QuantileForecast, targets, quantiles []float64) (float64, error) {
	losses, err := Pinball(preds, targets, quantiles)
	if err != nil {
		return 0, err
	}
	sum, n := 0.0, 0
	for _, row := range losses {
		for _, l := range row {
			sum += l
			n++
		}
	}
	return sum / float64(n), nil
}

// CRPS approximates the continuous ranked probability score from a
// quantile forecast by trapezoidal integration of the squared difference
// between the forecast CDF and the empirical step function, averaged over
// samples.
func CRPS(preds QuantileForecast, targets, quantiles []float64) (float64, error) {
	if err := checkQuantiles(preds, targets, quantiles); err != nil {
		return 0, err
	}
	n := len(quantiles)
	if n < 2 {
		return 0, errors.New("need at least two quantiles")
	}
	// Conditional probability grid 0..1 over the quantile positions.
	p := make([]float64, n)
	for i := range p {
		p[i] = float64(i) / float64(n-1)
	}

	total := 0.0
	for i, row := range preds {
		integral := 0.0
		prevX := row[0]
		prevF := sqDiff(row[0] > targets[i], p[0])
		for q := 1; q < n; q++ {
			x := row[q]
			f := sqDiff(row[q] > targets[i], p[q])
			integral += (x - prevX) * (f + prevF) / 2
			prevX, prevF = x, f
		}
		total += integral
	}
	return total / float64(len(preds)), nil
}

func sqDiff(above bool, p float64) float64 {
	h := 0.0
	if above {
		h = 1
	}
	d := h - p
	return d * d
}

// PIT returns the probability integral transform of each target under its
// quantile forecast: the level of the first quantile at or above the
// target, or 1 when the target exceeds every quantile.
func PIT(preds QuantileForecast, targets, quantiles []float64) ([]float64, error) {
	if err := checkQuantiles(preds, targets, quantiles); err != nil {
		return nil, err
	}
	out := make([]float64, len(targets))
	for i, row := range preds {
		out[i] = 1
		for q, v := range row {
			if v >= targets[i] {
				out[i] = quantiles[q]
				break
			}
		}
	}
	return out, nil
}

// Reliability holds observed coverage per quantile with bootstrap
// consistency bands from surrogate uniform observations.
type Reliability struct {
	Quantiles []float64
	// Observed[q] is the proportion of targets below the q-th quantile
	// prediction; a calibrated forecast tracks Quantiles.
	Observed []float64
	// Lower/Upper are the 5th/95th percentile of the bootstrap proportions.
	Lower []float64
	Upper []float64
}

// ComputeReliability builds a reliability diagram with boot bootstrap
// replicates. rng may be nil, in which case a fixed-seed source is used so
// reports are reproducible.
func ComputeReliability(preds QuantileForecast, targets, quantiles []float64, boot int, rng *rand.Rand) (Reliability, error) {
	var rel Reliability
	if err := checkQuantiles(preds, targets, quantiles); err != nil {
		return rel, err
	}
	if boot < 10 {
		boot = 100
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(2))
	}

	nq := len(quantiles)
	observed := make([]float64, nq)
	for q := range quantiles {
		hits := 0
		for i, row := range preds {
			if row[q] > targets[i] {
				hits++
			}
		}
		observed[q] = float64(hits) / float64(len(targets))
	}

	// Consistency bands: coverage proportions of ideal uniform draws.
	bands := make([][]float64, boot)
	for b := 0; b < boot; b++ {
		props := make([]float64, nq)
		for range targets {
			z := rng.Float64()
			for q, tau := range quantiles {
				if z < tau {
					props[q]++
				}
			}
		}
		for q := range props {
			props[q] /= float64(len(targets))
		}
		bands[b] = props
	}

	lower := make([]float64, nq)
	upper := make([]float64, nq)
	col := make([]float64, boot)
	for q := 0; q < nq; q++ {
		for b := 0; b < boot; b++ {
			col[b] = bands[b][q]
		}
		sort.Float64s(col)
		lower[q] = col[int(0.05*float64(boot))]
		upper[q] = col[int(0.95*float64(boot))]
	}

	rel = Reliability{
		Quantiles: append([]float64(nil), quantiles...),
		Observed:  observed,
		Lower:     lower,
		Upper:     upper,
	}
	return rel, nil
}

// PINAW returns the prediction interval normalized average width for each
// symmetric interval in the quantile grid, widest first. Widths are
// normalized by the target range and expressed in percent.
func PINAW(preds QuantileForecast, targets, quantiles []float64) (intervals []float64, widths []float64, err error) {
	if err := checkQuantiles(preds, targets, quantiles); err != nil {
		return nil, nil, err
	}
	tmin, tmax := targets[0], targets[0]
	for _, t := range targets {
		tmin = math.Min(tmin, t)
		tmax = math.Max(tmax, t)
	}
	if tmax == tmin {
		return nil, nil, errors.New("targets are constant")
	}

	nPairs := len(quantiles) / 2
	intervals = make([]float64, nPairs)
	widths = make([]float64, nPairs)
	for j := 0; j < nPairs; j++ {
		hi := len(quantiles) - 1 - j
		sum := 0.0
		for _, row := range preds {
			sum += row[hi] - row[j]
		}
		widths[j] = 100 * (sum / float64(len(preds))) / (tmax - tmin)
		intervals[j] = quantiles[hi] - quantiles[j]
	}
	return intervals, widths, nil
}

func checkQuantiles(preds QuantileForecast, targets, quantiles []float64) error {
	if len(preds) != len(targets) {
		return fmt.Errorf("prediction rows %d != targets %d", len(preds), len(targets))
	}
	if len(targets) == 0 {
		return errors.New("no samples")
	}
	if len(quantiles) == 0 {
		return errors.New("no quantiles")
	}
	for _, row := range preds {
		if len(row) != len(quantiles) {
			return fmt.Errorf("prediction row has %d values, want %d", len(row), len(quantiles))
		}
	}
	for i := 1; i < len(quantiles); i++ {
		if quantiles[i] <= quantiles[i-1] {
			return errors.New("quantiles must be strictly increasing")
		}
	}
	return nil
}
