// Package optimize plans and simulates battery dispatch against campus
// net load and wholesale prices.
package optimize

import (
	"fmt"
	"time"

	"campus-energy/internal/timeseries"
)

// Interval is one scheduling timestep: the forecast (or realized) net
// load of the campus and the applicable price.
type Interval struct {
	Start time.Time
	End   time.Time

	// NetLoadKW is demand minus solar, before the battery acts.
	NetLoadKW float64
	// PricePerKWh is the wholesale price in $/kWh.
	PricePerKWh float64
}

func (i Interval) DurationHours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// BuildIntervals zips aligned net-load and price series into scheduling
// intervals. Both series must share start, step and length.
func BuildIntervals(netLoad, price *timeseries.Series) ([]Interval, error) {
	if netLoad.Step != price.Step || !netLoad.Start.Equal(price.Start) {
		return nil, fmt.Errorf("net load and price series are not aligned")
	}
	if netLoad.Len() != price.Len() {
		return nil, fmt.Errorf("length mismatch: %d net load vs %d price", netLoad.Len(), price.Len())
	}
	out := make([]Interval, netLoad.Len())
	for i := range out {
		start := netLoad.TimeAt(i)
		out[i] = Interval{
			Start:       start,
			End:         start.Add(netLoad.Step),
			NetLoadKW:   netLoad.Values[i],
			PricePerKWh: price.Values[i] / 1000.0, // series carries $/MWh
		}
	}
	return out, nil
}

// NetLoad subtracts solar from demand elementwise.
func NetLoad(demand, solar *timeseries.Series) (*timeseries.Series, error) {
	if solar == nil {
		return demand, nil
	}
	if demand.Step != solar.Step || !demand.Start.Equal(solar.Start) || demand.Len() != solar.Len() {
		return nil, fmt.Errorf("demand and solar series are not aligned")
	}
	values := make([]float64, demand.Len())
	for i := range values {
		values[i] = demand.Values[i] - solar.Values[i]
	}
	return timeseries.New(demand.Start, demand.Step, values)
}

// BaselineCost is the campus cost with no battery.
func BaselineCost(intervals []Interval) float64 {
	total := 0.0
	for _, it := range intervals {
		total += it.PricePerKWh * it.NetLoadKW * it.DurationHours()
	}
	return total
}
