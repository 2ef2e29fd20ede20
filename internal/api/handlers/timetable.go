package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-energy/internal/api/metrics"
	"campus-energy/internal/api/models"
	"campus-energy/internal/timetable"
)

// RunTimetable handles POST /api/v1/schedule/timetable.
func (d Deps) RunTimetable(c *gin.Context) {
	var req models.TimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	solver := &timetable.Solver{ImprovementPasses: req.ImprovementPasses}
	sched, err := solver.Solve(&req.Instance)
	if err != nil {
		if errors.Is(err, timetable.ErrInfeasible) {
			respondError(c, http.StatusUnprocessableEntity, "INFEASIBLE", err.Error())
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_INSTANCE", err.Error())
		return
	}

	metrics.TimetableRuns.Inc()
	c.JSON(http.StatusOK, models.TimetableResponse{
		ID:         uuid.NewString(),
		EnergyCost: sched.EnergyCost,
		Placements: sched.Placements,
	})
}
