package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-energy/internal/api/metrics"
	"campus-energy/internal/api/models"
	"campus-energy/internal/config"
	"campus-energy/internal/model"
	"campus-energy/internal/optimize"
)

// RunBatterySchedule handles POST /api/v1/schedule/battery.
func (d Deps) RunBatterySchedule(c *gin.Context) {
	var req models.BatteryScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}

	battCfg, err := d.resolveBattery(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BATTERY", err.Error())
		return
	}

	intervals, err := d.loadIntervals(c, req.Building, req.PriceBuilding, from, to)
	if err != nil {
		respondError(c, http.StatusBadRequest, "DATA_ERROR", err.Error())
		return
	}

	params := battCfg.ToModelParams()
	plan, err := optimize.PlanDispatch(intervals, params, battCfg.InitialSOC, optimize.PlanParams{
		SOCSteps:   req.SOCSteps,
		PowerSteps: req.PowerSteps,
		PerDay:     req.PerDay,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, "PLAN_ERROR", err.Error())
		return
	}

	batt, err := model.NewBattery(params, battCfg.InitialSOC)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BATTERY", err.Error())
		return
	}
	res, err := optimize.New().Run(intervals, batt, &optimize.PlanStrategy{PlanName: "dp-plan", Plan: plan})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SIMULATION_ERROR", err.Error())
		return
	}

	resp := models.BatteryScheduleResponse{
		ID:           uuid.NewString(),
		Building:     req.Building,
		Strategy:     res.Strategy,
		Intervals:    len(res.Ledger),
		BaselineCost: res.BaselineCost,
		TotalCost:    res.TotalCost,
		Saving:       res.Saving,
		FinalSOC:     res.FinalSOC,
	}
	if req.IncludeLedger {
		resp.Ledger = models.LedgerResponse(res.Ledger)
	}

	metrics.ScheduleRuns.Inc()
	c.JSON(http.StatusOK, resp)
}

// resolveBattery merges the request battery over the configured one,
// optionally starting from a battery file.
func (d Deps) resolveBattery(req models.BatteryScheduleRequest) (config.BatteryConfig, error) {
	base := d.Cfg.Battery
	if req.BatteryFile != "" {
		loaded, err := config.LoadBatteryFile(req.BatteryFile)
		if err != nil {
			return config.BatteryConfig{}, err
		}
		base = config.MergeBattery(base, loaded)
	}
	override := config.BatteryConfig{
		Name:                  req.Battery.Name,
		EnergyCapacityKWh:     req.Battery.EnergyCapacityKWh,
		PowerCapacityKW:       req.Battery.PowerCapacityKW,
		ChargeEfficiency:      req.Battery.ChargeEfficiency,
		DischargeEfficiency:   req.Battery.DischargeEfficiency,
		MinSOC:                req.Battery.MinSOC,
		MaxSOC:                req.Battery.MaxSOC,
		InitialSOC:            req.Battery.InitialSOC,
		DegradationCostPerKWh: req.Battery.DegradationCostPerKWh,
	}
	merged := config.MergeBattery(base, override)
	if merged.InitialSOC == 0 {
		merged.InitialSOC = merged.MinSOC
	}
	if _, err := model.NewBattery(merged.ToModelParams(), merged.InitialSOC); err != nil {
		return config.BatteryConfig{}, err
	}
	return merged, nil
}

// loadIntervals builds scheduling intervals for a building: demand minus
// any solar, priced with the shared campus price series.
func (d Deps) loadIntervals(c *gin.Context, building, priceBuilding string, from, to time.Time) ([]optimize.Interval, error) {
	if priceBuilding == "" {
		priceBuilding = DefaultPriceBuilding
	}
	opt, err := d.seriesOptions()
	if err != nil {
		return nil, err
	}
	return d.Store.LoadIntervals(c.Request.Context(), building, priceBuilding, from, to, opt)
}
