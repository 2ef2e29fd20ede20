package optimize

import (
	"fmt"
	"math"
	"time"

	"campus-energy/internal/model"
)

// PlanParams controls the dynamic-programming scheduler.
type PlanParams struct {
	// SOCSteps controls SOC discretization between [MinSOC, MaxSOC].
	// Higher = more accurate, slower.
	SOCSteps int

	// PowerSteps controls action discretization between [-Pmax, +Pmax].
	PowerSteps int

	// PerDay optimizes each day independently, resetting to the initial
	// SOC at each day boundary. Off = a single pass over the horizon.
	PerDay bool

	// Location defines day boundaries for PerDay; UTC when nil.
	Location *time.Location
}

// PlanDispatch computes a cost-minimizing dispatch plan for the given
// intervals by dynamic programming on a discretized SOC grid. The
// interval cost mirrors Battery.ApplyDispatch, so simulating the plan
// reproduces the planned cost up to grid rounding.
func PlanDispatch(intervals []Interval, p model.BatteryParams, initialSOC float64, cfg PlanParams) ([]model.Dispatch, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("no intervals")
	}
	if cfg.SOCSteps <= 0 {
		cfg.SOCSteps = 200
	}
	if cfg.PowerSteps <= 0 {
		cfg.PowerSteps = 10
	}
	if !cfg.PerDay {
		return planDP(intervals, p, initialSOC, cfg.SOCSteps, cfg.PowerSteps)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	// Intervals arrive sorted; chop at day boundaries and plan each day
	// from the same starting SOC.
	var day []Interval
	var plan []model.Dispatch
	var currentDay time.Time

	flush := func() error {
		if len(day) == 0 {
			return nil
		}
		dayPlan, err := planDP(day, p, initialSOC, cfg.SOCSteps, cfg.PowerSteps)
		if err != nil {
			return fmt.Errorf("planning day %s: %w", currentDay.Format("2006-01-02"), err)
		}
		plan = append(plan, dayPlan...)
		day = day[:0]
		return nil
	}

	for _, it := range intervals {
		t := it.Start.In(loc)
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if len(day) > 0 && !d.Equal(currentDay) {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if len(day) == 0 {
			currentDay = d
		}
		day = append(day, it)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(plan) != len(intervals) {
		return nil, fmt.Errorf("plan length (%d) does not match intervals length (%d)", len(plan), len(intervals))
	}
	return plan, nil
}

func planDP(intervals []Interval, p model.BatteryParams, initialSOC float64, socSteps, powerSteps int) ([]model.Dispatch, error) {
	if socSteps < 2 {
		socSteps = 2
	}
	nStates := socSteps + 1

	socToIdx := func(soc float64) int {
		if soc <= p.MinSOC {
			return 0
		}
		if soc >= p.MaxSOC {
			return socSteps
		}
		f := (soc - p.MinSOC) / (p.MaxSOC - p.MinSOC)
		return int(math.Round(f * float64(socSteps)))
	}
	idxToSOC := func(idx int) float64 {
		if idx <= 0 {
			return p.MinSOC
		}
		if idx >= socSteps {
			return p.MaxSOC
		}
		return p.MinSOC + float64(idx)/float64(socSteps)*(p.MaxSOC-p.MinSOC)
	}

	// dp holds the best achievable saving (negated cost) per SOC state.
	negInf := -1e100
	dp := make([]float64, nStates)
	next := make([]float64, nStates)
	for i := range dp {
		dp[i] = negInf
	}
	initIdx := socToIdx(initialSOC)
	dp[initIdx] = 0

	// Backpointers on the destination state: the source state and realized
	// power that produced its best value.
	prevState := make([][]int, len(intervals))
	prevPower := make([][]float64, len(intervals))
	for t := range intervals {
		prevState[t] = make([]int, nStates)
		prevPower[t] = make([]float64, nStates)
		for s := range prevState[t] {
			prevState[t][s] = -1
		}
	}

	// Action set: [-Pmax .. +Pmax] in steps.
	pmax := p.PowerCapacityKW
	step := pmax / float64(powerSteps)
	actions := make([]float64, 0, 2*powerSteps+1)
	for k := -powerSteps; k <= powerSteps; k++ {
		actions = append(actions, float64(k)*step)
	}

	for t, it := range intervals {
		for i := range next {
			next[i] = negInf
		}
		dtH := it.DurationHours()
		if dtH <= 0 {
			return nil, fmt.Errorf("non-positive interval duration at t=%d", t)
		}

		for sIdx := 0; sIdx < nStates; sIdx++ {
			if dp[sIdx] <= negInf/2 {
				continue
			}
			soc := idxToSOC(sIdx)

			for _, desired := range actions {
				nsoc, realized, cost := simulateStep(soc, desired, it.PricePerKWh, dtH, p)
				ns := socToIdx(nsoc)
				v := dp[sIdx] - cost
				if v > next[ns] {
					next[ns] = v
					prevState[t][ns] = sIdx
					prevPower[t][ns] = realized
				}
			}
		}

		dp, next = next, dp
	}

	// The plan must end at or above the starting SOC: liquidating the
	// starting inventory is not a saving. Idle keeps initIdx reachable, so
	// at least one terminal state always qualifies.
	best := -1
	for s := initIdx; s < nStates; s++ {
		if dp[s] <= negInf/2 {
			continue
		}
		if best < 0 || dp[s] > dp[best] {
			best = s
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("no reachable terminal state")
	}

	// Backtrack from the best terminal state.
	plan := make([]model.Dispatch, len(intervals))
	cur := best
	for t := len(intervals) - 1; t >= 0; t-- {
		src := prevState[t][cur]
		if src < 0 {
			return nil, fmt.Errorf("broken backpointer at t=%d state=%d", t, cur)
		}
		plan[t] = model.Dispatch{PowerKW: prevPower[t][cur]}
		cur = src
	}
	return plan, nil
}

// simulateStep is a pure version of the battery interval physics + cost.
// It mirrors model.Battery.ApplyDispatch: the desired power is clipped by
// the power limit and SOC bounds.
func simulateStep(soc, desiredPower, pricePerKWh, dtH float64, p model.BatteryParams) (nextSOC, realizedPower, cost float64) {
	power := desiredPower
	if power > p.PowerCapacityKW {
		power = p.PowerCapacityKW
	}
	if power < -p.PowerCapacityKW {
		power = -p.PowerCapacityKW
	}

	energyIn := 0.0
	energyOut := 0.0

	if power < 0 {
		reqIn := math.Abs(power) * dtH
		storableKWh := math.Max(0, (p.MaxSOC-soc)*p.EnergyCapacityKWh)
		maxIn := math.Min(storableKWh/p.ChargeEfficiency, p.PowerCapacityKW*dtH)
		if reqIn > maxIn && dtH > 0 {
			reqIn = maxIn
			power = -reqIn / dtH
		}
		nextSOC = soc + reqIn*p.ChargeEfficiency/p.EnergyCapacityKWh
		energyIn = reqIn
	} else if power > 0 {
		reqOut := power * dtH
		withdrawableKWh := math.Max(0, (soc-p.MinSOC)*p.EnergyCapacityKWh)
		maxOut := math.Min(withdrawableKWh*p.DischargeEfficiency, p.PowerCapacityKW*dtH)
		if reqOut > maxOut && dtH > 0 {
			reqOut = maxOut
			power = reqOut / dtH
		}
		nextSOC = soc - reqOut/p.DischargeEfficiency/p.EnergyCapacityKWh
		energyOut = reqOut
	} else {
		nextSOC = soc
	}

	// Clamp numeric drift.
	nextSOC = math.Min(p.MaxSOC, math.Max(p.MinSOC, nextSOC))

	deg := p.DegradationCostPerKWh * (energyIn + energyOut)
	cost = pricePerKWh*(energyIn-energyOut) + deg
	return nextSOC, power, cost
}
