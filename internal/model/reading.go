package model

import "time"

// Reading is one raw metered observation.
// Value units depend on the signal: kW for demand/solar, $/MWh for price.
type Reading struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
