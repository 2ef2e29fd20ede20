package optimize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"campus-energy/internal/model"
)

// WindowParams implements a fixed daily time-window strategy:
// - Charge during [ChargeStart, ChargeEnd)
// - Discharge during [DischargeStart, DischargeEnd)
// - Otherwise IDLE
//
// Times are "HH:MM" on the clock of Location (UTC when nil).
type WindowParams struct {
	ChargeStart      string
	ChargeEnd        string
	DischargeStart   string
	DischargeEnd     string
	ChargePowerKW    float64 // magnitude; treated as charge (negative)
	DischargePowerKW float64 // magnitude; treated as discharge (positive)
	Location         *time.Location
}

type WindowStrategy struct {
	Params WindowParams

	initialized bool
	csMins      int
	ceMins      int
	dsMins      int
	deMins      int
}

func NewWindowStrategy(p WindowParams) (*WindowStrategy, error) {
	s := &WindowStrategy{Params: p}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WindowStrategy) init() error {
	cs, err := parseHHMM(s.Params.ChargeStart)
	if err != nil {
		return err
	}
	ds, err := parseHHMM(s.Params.DischargeStart)
	if err != nil {
		return err
	}
	ce := ds
	if strings.TrimSpace(s.Params.ChargeEnd) != "" {
		if ce, err = parseHHMM(s.Params.ChargeEnd); err != nil {
			return err
		}
	}
	de := ds
	if strings.TrimSpace(s.Params.DischargeEnd) != "" {
		if de, err = parseHHMM(s.Params.DischargeEnd); err != nil {
			return err
		}
	}
	s.csMins, s.ceMins, s.dsMins, s.deMins = cs, ce, ds, de
	s.initialized = true
	return nil
}

func (s *WindowStrategy) Name() string { return "window" }

func (s *WindowStrategy) Decide(ctx Context) model.Dispatch {
	if !s.initialized {
		if err := s.init(); err != nil {
			return model.Dispatch{}
		}
	}

	t := ctx.Interval.Start
	if s.Params.Location != nil {
		t = t.In(s.Params.Location)
	}
	mins := t.Hour()*60 + t.Minute()

	if inWindow(mins, s.csMins, s.ceMins) {
		return model.Dispatch{PowerKW: -math.Abs(s.Params.ChargePowerKW)}
	}
	if inWindow(mins, s.dsMins, s.deMins) {
		return model.Dispatch{PowerKW: math.Abs(s.Params.DischargePowerKW)}
	}
	return model.Dispatch{}
}

func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start == end, the window is empty (always false).
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	return tMins >= start || tMins < end
}
