package models

import (
	"time"

	"campus-energy/internal/optimize"
	"campus-energy/internal/timetable"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ForecastPoint is one predicted step.
type ForecastPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	// Bands holds the quantile values aligned with the response's
	// Quantiles field; omitted when no quantiles were requested.
	Bands []float64 `json:"bands,omitempty"`
}

type ForecastResponse struct {
	ID        string          `json:"id"`
	Building  string          `json:"building"`
	Signal    string          `json:"signal"`
	Model     string          `json:"model"`
	IssuedAt  time.Time       `json:"issued_at"`
	Quantiles []float64       `json:"quantiles,omitempty"`
	Points    []ForecastPoint `json:"points"`
}

type LedgerRowResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Action    string    `json:"action"`
	PowerKW   float64   `json:"power_kw"`
	SOCEnd    float64   `json:"soc_end"`
	ImportKWh float64   `json:"import_kwh"`
	Cost      float64   `json:"cost"`
	CumCost   float64   `json:"cum_cost"`
}

type BatteryScheduleResponse struct {
	ID           string              `json:"id"`
	Building     string              `json:"building"`
	Strategy     string              `json:"strategy"`
	Intervals    int                 `json:"intervals"`
	BaselineCost float64             `json:"baseline_cost"`
	TotalCost    float64             `json:"total_cost"`
	Saving       float64             `json:"saving"`
	FinalSOC     float64             `json:"final_soc"`
	Ledger       []LedgerRowResponse `json:"ledger,omitempty"`
}

func LedgerResponse(ledger []optimize.LedgerRow) []LedgerRowResponse {
	out := make([]LedgerRowResponse, len(ledger))
	for i, r := range ledger {
		out[i] = LedgerRowResponse{
			Start:     r.Start,
			End:       r.End,
			Action:    string(r.Action),
			PowerKW:   r.PowerKW,
			SOCEnd:    r.SOCEnd,
			ImportKWh: r.ImportKWh,
			Cost:      r.Cost,
			CumCost:   r.CumCost,
		}
	}
	return out
}

type TimetableResponse struct {
	ID         string                `json:"id"`
	EnergyCost float64               `json:"energy_cost"`
	Placements []timetable.Placement `json:"placements"`
}

type RankEntry struct {
	BuildingID    string  `json:"building_id"`
	Count         int     `json:"count"`
	PeakLoadKW    float64 `json:"peak_load_kw"`
	MeanLoadKW    float64 `json:"mean_load_kw"`
	SpreadP95P05  float64 `json:"price_spread_p95_p05"`
	BaselineCost  float64 `json:"baseline_cost"`
	PlannedSaving float64 `json:"planned_saving"`
}

type RankResponse struct {
	Entries []RankEntry `json:"entries"`
}

type BuildingsResponse struct {
	Buildings []BuildingEntry `json:"buildings"`
}

type BuildingEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	PV   bool   `json:"pv"`
}
