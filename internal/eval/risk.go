package eval

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// VaR estimates the value at risk of a cost/PnL sample at level q
// (e.g. 0.05 for the 5% tail).
func VaR(sample []float64, q float64) (float64, error) {
	if len(sample) == 0 {
		return 0, errors.New("empty sample")
	}
	if q <= 0 || q >= 1 {
		return 0, errors.New("q must be in (0, 1)")
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil), nil
}

// CVaR estimates the conditional value at risk: the mean of the sample at
// or below the VaR threshold.
func CVaR(sample []float64, q float64) (float64, error) {
	v, err := VaR(sample, q)
	if err != nil {
		return 0, err
	}
	sum, n := 0.0, 0
	for _, x := range sample {
		if x <= v {
			sum += x
			n++
		}
	}
	if n == 0 {
		return v, nil
	}
	return sum / float64(n), nil
}
