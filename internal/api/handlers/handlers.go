// Package handlers implements the /api/v1 routes.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-energy/internal/api/metrics"
	"campus-energy/internal/api/models"
	"campus-energy/internal/config"
	"campus-energy/internal/model"
	"campus-energy/internal/store"
	"campus-energy/internal/timeseries"
)

// DefaultPriceBuilding is the store key the campus-wide price series is
// filed under.
const DefaultPriceBuilding = "campus"

// Deps bundles what every handler needs.
type Deps struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *slog.Logger
}

func respondError(c *gin.Context, status int, code, message string) {
	metrics.RequestErrors.WithLabelValues(code).Inc()
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	f, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad from %q: %w", from, err)
	}
	t, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad to %q: %w", to, err)
	}
	if !f.Before(t) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must precede to")
	}
	return f, t, nil
}

// seriesOptions maps the config to store loading options.
func (d Deps) seriesOptions() (store.SeriesOptions, error) {
	step, err := timeseries.ParseStep(d.Cfg.Forecast.Freq)
	if err != nil {
		return store.SeriesOptions{}, err
	}
	return store.SeriesOptions{
		Step:     step,
		FillMode: timeseries.FillMode(d.Cfg.Data.FillMode),
	}, nil
}

// loadSeries reads a signal range from the store and cleans it into a
// regular series.
func (d Deps) loadSeries(c *gin.Context, building string, signal model.Signal, from, to time.Time) (*timeseries.Series, error) {
	opt, err := d.seriesOptions()
	if err != nil {
		return nil, err
	}
	s, rep, err := d.Store.LoadSeries(c.Request.Context(), building, signal, from, to, opt)
	if err != nil {
		return nil, err
	}
	if len(rep.Filled) > 0 || len(rep.Duplicates) > 0 {
		d.Log.Warn("cleaned stored series",
			"building", building,
			"signal", string(signal),
			"filled", len(rep.Filled),
			"duplicates", len(rep.Duplicates),
		)
	}
	return s, nil
}

// ListBuildings handles GET /api/v1/buildings.
func (d Deps) ListBuildings(c *gin.Context) {
	resp := models.BuildingsResponse{}
	for _, b := range d.Cfg.Campus.Buildings {
		resp.Buildings = append(resp.Buildings, models.BuildingEntry{
			ID:   b.ID,
			Name: b.Name,
			PV:   b.PV != nil,
		})
	}
	c.JSON(http.StatusOK, resp)
}
