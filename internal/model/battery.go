package model

import (
	"errors"
	"math"
)

// BatteryParams defines the physical and economic parameters of the battery.
// Units:
// - EnergyCapacityKWh: kWh
// - PowerCapacityKW: kW
// - Efficiencies: 0..1
// - SOC: fraction 0..1
// - DegradationCostPerKWh: $/kWh throughput (charge + discharge)
type BatteryParams struct {
	EnergyCapacityKWh     float64
	PowerCapacityKW       float64
	ChargeEfficiency      float64
	DischargeEfficiency   float64
	MinSOC                float64
	MaxSOC                float64
	DegradationCostPerKWh float64
}

// BatteryState captures mutable state.
type BatteryState struct {
	// SOC is the state of charge as a fraction [0,1].
	SOC float64
}

// Battery is a convenience wrapper bundling params + state.
type Battery struct {
	Params BatteryParams
	State  BatteryState
}

func NewBattery(params BatteryParams, initialSOC float64) (*Battery, error) {
	b := &Battery{
		Params: params,
		State:  BatteryState{SOC: initialSOC},
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) Validate() error {
	p := b.Params
	if p.EnergyCapacityKWh <= 0 {
		return errors.New("EnergyCapacityKWh must be > 0")
	}
	if p.PowerCapacityKW <= 0 {
		return errors.New("PowerCapacityKW must be > 0")
	}
	if p.ChargeEfficiency <= 0 || p.ChargeEfficiency > 1 {
		return errors.New("ChargeEfficiency must be in (0, 1]")
	}
	if p.DischargeEfficiency <= 0 || p.DischargeEfficiency > 1 {
		return errors.New("DischargeEfficiency must be in (0, 1]")
	}
	if p.MinSOC < 0 || p.MinSOC > 1 || p.MaxSOC < 0 || p.MaxSOC > 1 || p.MinSOC > p.MaxSOC {
		return errors.New("MinSOC/MaxSOC must satisfy 0<=MinSOC<=MaxSOC<=1")
	}
	if b.State.SOC < p.MinSOC || b.State.SOC > p.MaxSOC {
		return errors.New("initial SOC must be within [MinSOC, MaxSOC]")
	}
	if p.DegradationCostPerKWh < 0 {
		return errors.New("DegradationCostPerKWh must be >= 0")
	}
	return nil
}

// Dispatch represents a requested power setpoint for an interval.
// Convention: positive kW = discharge toward the campus bus, negative kW = charge.
type Dispatch struct {
	PowerKW float64
}

// IntervalResult captures what happened in one interval.
type IntervalResult struct {
	PowerKW          float64 // realized power (may be clipped)
	EnergyOutKWh     float64 // discharge energy delivered to the campus bus
	EnergyInKWh      float64 // charge energy drawn from the campus bus
	ThroughputKWh    float64 // EnergyInKWh + EnergyOutKWh
	SOCStart         float64
	SOCEnd           float64
	Cost             float64 // $ for this interval (incl degradation); negative = saving
}

// ClipDispatch enforces the power limit, without applying SOC constraints.
func (b *Battery) ClipDispatch(d Dispatch) Dispatch {
	p := d.PowerKW
	if p > b.Params.PowerCapacityKW {
		p = b.Params.PowerCapacityKW
	}
	if p < -b.Params.PowerCapacityKW {
		p = -b.Params.PowerCapacityKW
	}
	return Dispatch{PowerKW: p}
}

// ApplyDispatch applies a dispatch for a single interval, enforcing:
// - power capacity
// - SOC bounds (by clipping the requested power)
//
// pricePerKWh is $/kWh for the interval.
// durationHours is the interval length in hours.
func (b *Battery) ApplyDispatch(pricePerKWh float64, d Dispatch, durationHours float64) (IntervalResult, error) {
	if durationHours <= 0 {
		return IntervalResult{}, errors.New("durationHours must be > 0")
	}

	d = b.ClipDispatch(d)
	p := d.PowerKW

	res := IntervalResult{
		SOCStart: b.State.SOC,
	}

	// SOC constraints determine the max feasible charge/discharge for the interval.
	maxInKWh := b.maxChargeEnergyKWh(durationHours)
	maxOutKWh := b.maxDischargeEnergyKWh(durationHours)

	if p < 0 {
		// Charging: power magnitude is kW drawn from the bus.
		reqInKWh := math.Abs(p) * durationHours
		if reqInKWh > maxInKWh {
			reqInKWh = maxInKWh
			p = -reqInKWh / durationHours
		}
		// SOC increases by stored energy = drawn * chargeEff
		storedKWh := reqInKWh * b.Params.ChargeEfficiency
		b.State.SOC = clamp01((b.State.SOC*b.Params.EnergyCapacityKWh + storedKWh) / b.Params.EnergyCapacityKWh)

		res.PowerKW = p
		res.EnergyInKWh = reqInKWh
		res.EnergyOutKWh = 0
		res.ThroughputKWh = reqInKWh
	} else if p > 0 {
		// Discharging: power is kW delivered to the bus.
		reqOutKWh := p * durationHours
		if reqOutKWh > maxOutKWh {
			reqOutKWh = maxOutKWh
			p = reqOutKWh / durationHours
		}
		// SOC decreases by withdrawn energy = delivered / dischargeEff
		withdrawnKWh := reqOutKWh / b.Params.DischargeEfficiency
		b.State.SOC = clamp01((b.State.SOC*b.Params.EnergyCapacityKWh - withdrawnKWh) / b.Params.EnergyCapacityKWh)

		res.PowerKW = p
		res.EnergyInKWh = 0
		res.EnergyOutKWh = reqOutKWh
		res.ThroughputKWh = reqOutKWh
	} else {
		res.PowerKW = 0
	}

	res.SOCEnd = b.State.SOC
	res.Cost = b.IntervalCost(pricePerKWh, res.EnergyInKWh, res.EnergyOutKWh)
	return res, nil
}

// IntervalCost computes the interval cost given the *bus-side* energies.
// - energyInKWh: kWh purchased to charge (cost)
// - energyOutKWh: kWh displaced when discharging (saving)
// A negative result means the battery saved money over the interval.
func (b *Battery) IntervalCost(pricePerKWh float64, energyInKWh float64, energyOutKWh float64) float64 {
	saving := pricePerKWh * energyOutKWh
	cost := pricePerKWh * energyInKWh
	degradation := b.Params.DegradationCostPerKWh * (energyInKWh + energyOutKWh)
	return cost - saving + degradation
}

func (b *Battery) maxChargeEnergyKWh(durationHours float64) float64 {
	// Max additional stored energy before hitting MaxSOC.
	storableKWh := (b.Params.MaxSOC - b.State.SOC) * b.Params.EnergyCapacityKWh
	if storableKWh <= 0 {
		return 0
	}
	// Bus energy required = stored / eff.
	limitBySOC := storableKWh / b.Params.ChargeEfficiency
	limitByPower := b.Params.PowerCapacityKW * durationHours
	return math.Max(0, math.Min(limitBySOC, limitByPower))
}

func (b *Battery) maxDischargeEnergyKWh(durationHours float64) float64 {
	// Max withdrawable stored energy before hitting MinSOC.
	withdrawableKWh := (b.State.SOC - b.Params.MinSOC) * b.Params.EnergyCapacityKWh
	if withdrawableKWh <= 0 {
		return 0
	}
	// Bus energy delivered = withdrawn * eff.
	limitBySOC := withdrawableKWh * b.Params.DischargeEfficiency
	limitByPower := b.Params.PowerCapacityKW * durationHours
	return math.Max(0, math.Min(limitBySOC, limitByPower))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
