package optimize

import (
	"time"

	"campus-energy/internal/model"
)

// LedgerRow is one row of per-interval output.
// This is the primary artifact for "what happened" in a simulation.
type LedgerRow struct {
	Index int

	Start time.Time
	End   time.Time

	NetLoadKW   float64
	PricePerKWh float64

	Action model.Action

	RequestedPowerKW float64
	PowerKW          float64

	EnergyInKWh   float64
	EnergyOutKWh  float64
	ThroughputKWh float64

	SOCStart float64
	SOCEnd   float64

	// ImportKWh is the grid energy the campus imported this interval
	// after the battery acted; negative means export.
	ImportKWh float64

	// Cost is the campus cost for the interval ($), battery included.
	Cost    float64
	CumCost float64
}

type Result struct {
	Strategy string
	Ledger   []LedgerRow

	TotalCost    float64
	BaselineCost float64
	Saving       float64
	FinalSOC     float64
}
