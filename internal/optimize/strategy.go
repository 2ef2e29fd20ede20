package optimize

import "campus-energy/internal/model"

type Context struct {
	Index    int
	Interval Interval
	Battery  *model.Battery
}

// Strategy decides a dispatch for each interval while the simulator runs.
type Strategy interface {
	Name() string
	Decide(ctx Context) model.Dispatch
}

// PlanStrategy replays a precomputed dispatch plan (the DP output).
type PlanStrategy struct {
	PlanName string
	Plan     []model.Dispatch
}

func (s *PlanStrategy) Name() string {
	if s.PlanName != "" {
		return s.PlanName
	}
	return "plan"
}

func (s *PlanStrategy) Decide(ctx Context) model.Dispatch {
	if ctx.Index < 0 || ctx.Index >= len(s.Plan) {
		return model.Dispatch{}
	}
	return s.Plan[ctx.Index]
}

// ThresholdStrategy charges when the price drops below ChargeBelow and
// discharges when it rises above DischargeAbove ($/kWh).
type ThresholdStrategy struct {
	ChargeBelow      float64
	DischargeAbove   float64
	ChargePowerKW    float64 // magnitude; applied as charge (negative)
	DischargePowerKW float64 // magnitude; applied as discharge (positive)
}

func (s *ThresholdStrategy) Name() string { return "threshold" }

func (s *ThresholdStrategy) Decide(ctx Context) model.Dispatch {
	switch {
	case ctx.Interval.PricePerKWh < s.ChargeBelow:
		return model.Dispatch{PowerKW: -abs(s.ChargePowerKW)}
	case ctx.Interval.PricePerKWh > s.DischargeAbove:
		return model.Dispatch{PowerKW: abs(s.DischargePowerKW)}
	default:
		return model.Dispatch{}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
