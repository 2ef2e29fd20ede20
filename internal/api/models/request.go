package models

import "campus-energy/internal/timetable"

// ForecastRequest asks for a forecast of one building signal.
type ForecastRequest struct {
	Building string `json:"building" binding:"required"`
	Signal   string `json:"signal" binding:"required"` // demand|solar|price
	// Model overrides the configured default ("seasonal-naive", "linear-ar").
	Model string `json:"model,omitempty"`
	// From/To bound the training history, RFC3339.
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
	// HorizonSteps defaults to the configured horizon.
	HorizonSteps int `json:"horizon_steps,omitempty"`
	// Quantiles for the probabilistic bands; empty skips bands.
	Quantiles []float64 `json:"quantiles,omitempty"`
}

// BatteryScheduleRequest plans and simulates a battery schedule for one
// building over a stored data range.
type BatteryScheduleRequest struct {
	Building string `json:"building" binding:"required"`
	// PriceBuilding names the building id the price series is stored
	// under; defaults to "campus".
	PriceBuilding string `json:"price_building,omitempty"`
	From          string `json:"from" binding:"required"`
	To            string `json:"to" binding:"required"`

	Battery     BatteryConfig `json:"battery,omitempty"`
	BatteryFile string        `json:"battery_file,omitempty"`

	PerDay     bool `json:"per_day,omitempty"`
	SOCSteps   int  `json:"soc_steps,omitempty"`
	PowerSteps int  `json:"power_steps,omitempty"`

	IncludeLedger bool `json:"include_ledger,omitempty"`
}

// BatteryConfig mirrors the YAML battery shape for request overrides.
type BatteryConfig struct {
	Name                  string  `json:"name,omitempty"`
	EnergyCapacityKWh     float64 `json:"energy_capacity_kwh"`
	PowerCapacityKW       float64 `json:"power_capacity_kw"`
	ChargeEfficiency      float64 `json:"charge_efficiency"`
	DischargeEfficiency   float64 `json:"discharge_efficiency"`
	MinSOC                float64 `json:"min_soc"`
	MaxSOC                float64 `json:"max_soc"`
	InitialSOC            float64 `json:"initial_soc,omitempty"`
	DegradationCostPerKWh float64 `json:"degradation_cost_per_kwh,omitempty"`
}

// TimetableRequest carries a full timetabling instance.
type TimetableRequest struct {
	Instance timetable.Instance `json:"instance" binding:"required"`
	// ImprovementPasses bounds the local search; 0 uses the default.
	ImprovementPasses int `json:"improvement_passes,omitempty"`
}

// RankRequest ranks buildings by battery savings potential.
type RankRequest struct {
	From          string `form:"from" binding:"required"`
	To            string `form:"to" binding:"required"`
	PriceBuilding string `form:"price_building,omitempty"`
	Limit         int    `form:"limit,omitempty"`
}
