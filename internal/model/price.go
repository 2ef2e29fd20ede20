package model

import "time"

// PriceInterval is one wholesale price interval.
// Timestamps are UTC; Start is inclusive, End exclusive.
type PriceInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// PriceMWh is the market-clearing price in $/MWh.
	PriceMWh float64 `json:"price_mwh"`
}

func (p PriceInterval) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

func (p PriceInterval) DurationHours() float64 {
	return p.Duration().Hours()
}

// PerKWh converts the wholesale price to $/kWh for campus-scale accounting.
func (p PriceInterval) PerKWh() float64 {
	return p.PriceMWh / 1000.0
}
