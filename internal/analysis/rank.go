package analysis

import (
	"sort"

	"campus-energy/internal/model"
	"campus-energy/internal/optimize"
)

// RankBySaving computes savings potential per building and sorts
// descending by the planned saving.
func RankBySaving(byBuilding map[string][]optimize.Interval, params model.BatteryParams, initialSOC float64) ([]SavingsPotential, error) {
	out := make([]SavingsPotential, 0, len(byBuilding))
	for id, intervals := range byBuilding {
		p, err := ComputePotential(id, intervals, params, initialSOC)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlannedSaving != out[j].PlannedSaving {
			return out[i].PlannedSaving > out[j].PlannedSaving
		}
		return out[i].BuildingID < out[j].BuildingID
	})
	return out, nil
}
