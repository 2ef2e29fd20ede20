package optimize

import (
	"fmt"

	"campus-energy/internal/model"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run simulates a strategy over the interval series, mutating the
// battery's SOC as it goes. Costs are campus-side: import energy at the
// interval price, export credited at the same price, battery degradation
// on top.
func (e *Engine) Run(intervals []Interval, batt *model.Battery, strat Strategy) (*Result, error) {
	if batt == nil {
		return nil, fmt.Errorf("battery is nil")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(intervals) == 0 {
		return nil, fmt.Errorf("no intervals")
	}

	ledger := make([]LedgerRow, 0, len(intervals))
	cum := 0.0
	baseline := 0.0

	for idx, it := range intervals {
		dtH := it.DurationHours()
		req := strat.Decide(Context{
			Index:    idx,
			Interval: it,
			Battery:  batt,
		})

		res, err := batt.ApplyDispatch(it.PricePerKWh, req, dtH)
		if err != nil {
			return nil, fmt.Errorf("interval %d apply dispatch: %w", idx, err)
		}

		loadKWh := it.NetLoadKW * dtH
		importKWh := loadKWh + res.EnergyInKWh - res.EnergyOutKWh
		cost := it.PricePerKWh*importKWh + batt.Params.DegradationCostPerKWh*res.ThroughputKWh
		cum += cost
		baseline += it.PricePerKWh * loadKWh

		ledger = append(ledger, LedgerRow{
			Index: idx,

			Start: it.Start,
			End:   it.End,

			NetLoadKW:   it.NetLoadKW,
			PricePerKWh: it.PricePerKWh,

			Action: model.ActionFromPowerKW(res.PowerKW),

			RequestedPowerKW: req.PowerKW,
			PowerKW:          res.PowerKW,

			EnergyInKWh:   res.EnergyInKWh,
			EnergyOutKWh:  res.EnergyOutKWh,
			ThroughputKWh: res.ThroughputKWh,

			SOCStart: res.SOCStart,
			SOCEnd:   res.SOCEnd,

			ImportKWh: importKWh,

			Cost:    cost,
			CumCost: cum,
		})
	}

	return &Result{
		Strategy:     strat.Name(),
		Ledger:       ledger,
		TotalCost:    cum,
		BaselineCost: baseline,
		Saving:       baseline - cum,
		FinalSOC:     batt.State.SOC,
	}, nil
}
