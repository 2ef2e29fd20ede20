// Package analysis summarizes where storage helps: per-building savings
// potential and price statistics used for ranking.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"campus-energy/internal/model"
	"campus-energy/internal/optimize"
)

// SavingsPotential is a building-level summary used for ranking.
// It combines raw price/load statistics with the saving a planned battery
// schedule achieves over the same horizon.
type SavingsPotential struct {
	BuildingID string

	Start time.Time
	End   time.Time

	Count int

	PeakLoadKW float64
	MeanLoadKW float64

	MinPrice     float64 // $/kWh
	MaxPrice     float64
	MeanPrice    float64
	P05Price     float64
	P95Price     float64
	SpreadP95P05 float64

	BaselineCost float64
	// PlannedSaving is the $ saving from the DP schedule for the supplied
	// battery over the full horizon.
	PlannedSaving float64
}

// ComputePotential plans and simulates the battery against one building's
// intervals and collects the summary statistics.
func ComputePotential(buildingID string, intervals []optimize.Interval, params model.BatteryParams, initialSOC float64) (SavingsPotential, error) {
	p := SavingsPotential{BuildingID: buildingID}
	if len(intervals) == 0 {
		return p, fmt.Errorf("no intervals for building %s", buildingID)
	}
	p.Count = len(intervals)
	p.Start = intervals[0].Start
	p.End = intervals[len(intervals)-1].End

	prices := make([]float64, 0, len(intervals))
	sumPrice, sumLoad := 0.0, 0.0
	minP, maxP := math.Inf(1), math.Inf(-1)
	for _, it := range intervals {
		prices = append(prices, it.PricePerKWh)
		sumPrice += it.PricePerKWh
		sumLoad += it.NetLoadKW
		minP = math.Min(minP, it.PricePerKWh)
		maxP = math.Max(maxP, it.PricePerKWh)
		p.PeakLoadKW = math.Max(p.PeakLoadKW, it.NetLoadKW)
	}
	sort.Float64s(prices)
	p.MinPrice = minP
	p.MaxPrice = maxP
	p.MeanPrice = sumPrice / float64(len(prices))
	p.MeanLoadKW = sumLoad / float64(len(intervals))
	p.P05Price = percentileSorted(prices, 0.05)
	p.P95Price = percentileSorted(prices, 0.95)
	p.SpreadP95P05 = p.P95Price - p.P05Price
	p.BaselineCost = optimize.BaselineCost(intervals)

	plan, err := optimize.PlanDispatch(intervals, params, initialSOC, optimize.PlanParams{})
	if err != nil {
		return p, fmt.Errorf("planning for building %s: %w", buildingID, err)
	}
	batt, err := model.NewBattery(params, initialSOC)
	if err != nil {
		return p, err
	}
	res, err := optimize.New().Run(intervals, batt, &optimize.PlanStrategy{Plan: plan})
	if err != nil {
		return p, fmt.Errorf("simulating for building %s: %w", buildingID, err)
	}
	p.PlannedSaving = res.Saving
	return p, nil
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
