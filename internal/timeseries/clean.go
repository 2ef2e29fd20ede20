package timeseries

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"campus-energy/internal/model"
)

// FillMode selects how gaps in raw readings are filled when building a
// regular series.
type FillMode string

const (
	// FillBackshift copies the value observed one hour earlier. Duplicate
	// timestamps (fall-back DST artifacts) keep the first observation.
	FillBackshift FillMode = "backshift"
	// FillInterpolate fills gaps with a linear ramp between the readings
	// bounding the gap. Duplicate timestamps are averaged.
	FillInterpolate FillMode = "interpolate"
)

// CleanReport describes what Clean changed.
type CleanReport struct {
	Filled     []time.Time
	Duplicates []time.Time
}

// Clean turns raw readings into a dense fixed-step series. Readings are
// sorted, snapped onto the step grid, de-duplicated and gap-filled per
// mode. The first and last reading must be present; leading or trailing
// gaps are an error because neither fill mode can anchor them.
func Clean(readings []model.Reading, step time.Duration, mode FillMode) (*Series, CleanReport, error) {
	rep := CleanReport{}
	if len(readings) == 0 {
		return nil, rep, errors.New("no readings")
	}
	if step <= 0 {
		return nil, rep, errors.New("step must be > 0")
	}

	rs := make([]model.Reading, len(readings))
	copy(rs, readings)
	sort.Slice(rs, func(i, j int) bool { return rs[i].Time.Before(rs[j].Time) })

	start := rs[0].Time.UTC().Truncate(step)
	end := rs[len(rs)-1].Time.UTC().Truncate(step)
	n := int(end.Sub(start)/step) + 1

	values := make([]float64, n)
	seen := make([]int, n) // observation count per slot

	for _, r := range rs {
		t := r.Time.UTC().Truncate(step)
		i := int(t.Sub(start) / step)
		if i < 0 || i >= n {
			continue
		}
		if seen[i] > 0 {
			if len(rep.Duplicates) == 0 || !rep.Duplicates[len(rep.Duplicates)-1].Equal(t) {
				rep.Duplicates = append(rep.Duplicates, t)
			}
			switch mode {
			case FillBackshift:
				// keep first
			case FillInterpolate:
				// running average of the duplicates
				values[i] = (values[i]*float64(seen[i]) + r.Value) / float64(seen[i]+1)
				seen[i]++
			}
			continue
		}
		values[i] = r.Value
		seen[i] = 1
	}

	switch mode {
	case FillBackshift:
		if err := fillBackshift(values, seen, start, step, &rep); err != nil {
			return nil, rep, err
		}
	case FillInterpolate:
		if err := fillInterpolate(values, seen, start, step, &rep); err != nil {
			return nil, rep, err
		}
	default:
		return nil, rep, fmt.Errorf("unknown fill mode %q", mode)
	}

	s, err := New(start, step, values)
	return s, rep, err
}

// fillBackshift copies the value from one hour earlier into each gap.
func fillBackshift(values []float64, seen []int, start time.Time, step time.Duration, rep *CleanReport) error {
	hourSteps := int(time.Hour / step)
	if hourSteps < 1 {
		hourSteps = 1
	}
	for i := range values {
		if seen[i] > 0 {
			continue
		}
		j := i - hourSteps
		if j < 0 {
			return fmt.Errorf("gap at %s too close to series start for backshift fill", start.Add(time.Duration(i)*step))
		}
		values[i] = values[j]
		seen[i] = 1
		rep.Filled = append(rep.Filled, start.Add(time.Duration(i)*step))
	}
	return nil
}

// fillInterpolate ramps linearly between the observations bounding each gap.
func fillInterpolate(values []float64, seen []int, start time.Time, step time.Duration, rep *CleanReport) error {
	i := 0
	for i < len(values) {
		if seen[i] > 0 {
			i++
			continue
		}
		lo := i - 1
		hi := i
		for hi < len(values) && seen[hi] == 0 {
			hi++
		}
		if lo < 0 || hi >= len(values) {
			return errors.New("cannot interpolate a gap at the series boundary")
		}
		span := hi - lo
		dy := (values[hi] - values[lo]) / float64(span)
		for k := lo + 1; k < hi; k++ {
			values[k] = values[lo] + dy*float64(k-lo)
			seen[k] = 1
			rep.Filled = append(rep.Filled, start.Add(time.Duration(k)*step))
		}
		i = hi
	}
	return nil
}
