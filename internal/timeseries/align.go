package timeseries

import (
	"errors"
	"time"
)

// Align trims the given series to their common time range. All series
// must share the same step and grid phase. Nil entries are passed
// through untouched.
func Align(series ...*Series) ([]*Series, error) {
	var step time.Duration
	var start, end time.Time
	first := true
	for _, s := range series {
		if s == nil {
			continue
		}
		if first {
			step = s.Step
			start = s.Start
			end = s.TimeAt(s.Len())
			first = false
			continue
		}
		if s.Step != step {
			return nil, errors.New("series steps differ")
		}
		if s.Start.Sub(start)%step != 0 {
			return nil, errors.New("series grids are out of phase")
		}
		if s.Start.After(start) {
			start = s.Start
		}
		if e := s.TimeAt(s.Len()); e.Before(end) {
			end = e
		}
	}
	if first {
		return series, nil
	}
	if !start.Before(end) {
		return nil, errors.New("series do not overlap")
	}

	out := make([]*Series, len(series))
	for i, s := range series {
		if s == nil {
			continue
		}
		from := int(start.Sub(s.Start) / step)
		to := int(end.Sub(s.Start) / step)
		trimmed, err := s.Slice(from, to)
		if err != nil {
			return nil, err
		}
		out[i] = trimmed
	}
	return out, nil
}
