// Package timeseries holds the fixed-step series type and the feature
// construction used by the forecasting models: gap filling, lag/lead
// windows, partial autocorrelation and cross-correlation.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultStep is the campus metering granularity.
const DefaultStep = 15 * time.Minute

// Series is a regular fixed-step time series. Index 0 is at Start; index i
// is at Start + i*Step. Values are dense; gaps must be filled before a
// Series is constructed (see Clean).
type Series struct {
	Start  time.Time
	Step   time.Duration
	Values []float64
}

func New(start time.Time, step time.Duration, values []float64) (*Series, error) {
	if step <= 0 {
		return nil, errors.New("step must be > 0")
	}
	return &Series{Start: start.UTC(), Step: step, Values: values}, nil
}

func (s *Series) Len() int { return len(s.Values) }

// TimeAt returns the timestamp of index i.
func (s *Series) TimeAt(i int) time.Time {
	return s.Start.Add(time.Duration(i) * s.Step)
}

// IndexOf returns the index of t, or an error if t does not fall on the
// series grid or lies outside it.
func (s *Series) IndexOf(t time.Time) (int, error) {
	d := t.UTC().Sub(s.Start)
	if d < 0 {
		return 0, fmt.Errorf("time %s precedes series start %s", t, s.Start)
	}
	if d%s.Step != 0 {
		return 0, fmt.Errorf("time %s is not on the %s grid", t, s.Step)
	}
	i := int(d / s.Step)
	if i >= len(s.Values) {
		return 0, fmt.Errorf("time %s is past the series end", t)
	}
	return i, nil
}

// Slice returns the sub-series [from, to).
func (s *Series) Slice(from, to int) (*Series, error) {
	if from < 0 || to > len(s.Values) || from > to {
		return nil, fmt.Errorf("invalid slice [%d, %d) of %d values", from, to, len(s.Values))
	}
	return &Series{
		Start:  s.TimeAt(from),
		Step:   s.Step,
		Values: s.Values[from:to],
	}, nil
}

// StepsPerHour returns observations per hour for the series step.
// 15-minute data yields 4, hourly data 1, 4-hourly data 0.25.
func (s *Series) StepsPerHour() float64 {
	return float64(time.Hour) / float64(s.Step)
}

// StepsPerDay returns observations per day, rounded to the nearest step.
func (s *Series) StepsPerDay() int {
	return int(math.Round(24 * s.StepsPerHour()))
}

// ParseStep maps the frequency strings used in config files to a step.
func ParseStep(freq string) (time.Duration, error) {
	switch freq {
	case "15min":
		return 15 * time.Minute, nil
	case "1h", "H":
		return time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported series frequency %q", freq)
	}
}
