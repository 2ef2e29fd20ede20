package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-energy/internal/analysis"
	"campus-energy/internal/api/models"
	"campus-energy/internal/optimize"
)

// RankBuildings handles GET /api/v1/rank.
func (d Deps) RankBuildings(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}
	priceBuilding := req.PriceBuilding
	if priceBuilding == "" {
		priceBuilding = DefaultPriceBuilding
	}

	buildings, err := d.Store.Buildings(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATA_ERROR", err.Error())
		return
	}

	byBuilding := map[string][]optimize.Interval{}
	for _, b := range buildings {
		if b == priceBuilding {
			continue
		}
		intervals, err := d.loadIntervals(c, b, priceBuilding, from, to)
		if err != nil {
			d.Log.Warn("skipping building in ranking", "building", b, "error", err)
			continue
		}
		byBuilding[b] = intervals
	}
	if len(byBuilding) == 0 {
		respondError(c, http.StatusBadRequest, "DATA_ERROR", "no buildings with usable data in range")
		return
	}

	battCfg := d.Cfg.Battery
	ranked, err := analysis.RankBySaving(byBuilding, battCfg.ToModelParams(), battCfg.InitialSOC)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "RANK_ERROR", err.Error())
		return
	}
	if req.Limit > 0 && req.Limit < len(ranked) {
		ranked = ranked[:req.Limit]
	}

	resp := models.RankResponse{}
	for _, r := range ranked {
		resp.Entries = append(resp.Entries, models.RankEntry{
			BuildingID:    r.BuildingID,
			Count:         r.Count,
			PeakLoadKW:    r.PeakLoadKW,
			MeanLoadKW:    r.MeanLoadKW,
			SpreadP95P05:  r.SpreadP95P05,
			BaselineCost:  r.BaselineCost,
			PlannedSaving: r.PlannedSaving,
		})
	}
	c.JSON(http.StatusOK, resp)
}
