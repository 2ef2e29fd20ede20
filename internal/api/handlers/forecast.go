package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-energy/internal/api/metrics"
	"campus-energy/internal/api/models"
	"campus-energy/internal/forecast"
	"campus-energy/internal/model"
	"campus-energy/internal/timeseries"
)

// RunForecast handles POST /api/v1/forecast.
func (d Deps) RunForecast(c *gin.Context) {
	var req models.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	signal := model.Signal(req.Signal)
	if !signal.Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_SIGNAL", "signal must be demand, solar, price or weather")
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}

	series, err := d.loadSeries(c, req.Building, signal, from, to)
	if err != nil {
		respondError(c, http.StatusBadRequest, "DATA_ERROR", err.Error())
		return
	}

	modelName := req.Model
	if modelName == "" {
		modelName = d.Cfg.Forecast.Model
	}
	m, err := d.buildForecaster(modelName, signal, series)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_MODEL", err.Error())
		return
	}

	horizon := req.HorizonSteps
	if horizon <= 0 {
		horizon = d.Cfg.Forecast.HorizonSteps
	}

	if err := m.Fit(series); err != nil {
		respondError(c, http.StatusBadRequest, "FIT_ERROR", err.Error())
		return
	}
	points, err := m.Predict(horizon)
	if err != nil {
		respondError(c, http.StatusBadRequest, "PREDICT_ERROR", err.Error())
		return
	}

	var bands [][]float64
	if len(req.Quantiles) > 0 {
		bands, err = forecast.QuantileBands(points, m.Residuals(), req.Quantiles)
		if err != nil {
			respondError(c, http.StatusBadRequest, "QUANTILE_ERROR", err.Error())
			return
		}
	}

	issuedAt := time.Now().UTC()
	resp := models.ForecastResponse{
		ID:        uuid.NewString(),
		Building:  req.Building,
		Signal:    req.Signal,
		Model:     m.Name(),
		IssuedAt:  issuedAt,
		Quantiles: req.Quantiles,
	}
	forecastReadings := make([]model.Reading, len(points))
	horizonStart := series.TimeAt(series.Len())
	for i, v := range points {
		t := horizonStart.Add(time.Duration(i) * series.Step)
		forecastReadings[i] = model.Reading{Time: t, Value: v}
		p := models.ForecastPoint{Time: t, Value: v}
		if bands != nil {
			p.Bands = bands[i]
		}
		resp.Points = append(resp.Points, p)
	}

	if err := d.Store.SaveForecast(c.Request.Context(), req.Building, signal, m.Name(), issuedAt, forecastReadings); err != nil {
		d.Log.Error("persisting forecast", "error", err)
	}

	metrics.ForecastRuns.WithLabelValues(m.Name()).Inc()
	c.JSON(http.StatusOK, resp)
}

func (d Deps) buildForecaster(name string, signal model.Signal, series *timeseries.Series) (forecast.Forecaster, error) {
	switch name {
	case "seasonal-naive":
		return forecast.NewSeasonalNaive(series.StepsPerDay()), nil
	case "linear-ar":
		startAfter := d.Cfg.Forecast.OperationalLag
		if d.Cfg.Forecast.DayAhead || signal == model.SignalPrice {
			startAfter = timeseries.DayAheadStartAfter(series.StepsPerDay(), d.Cfg.Forecast.OperationalLag)
		}
		lags, err := forecast.AutoLags(series, d.Cfg.Forecast.MaxLag, d.Cfg.Forecast.PACFThreshold, startAfter)
		if err != nil {
			return nil, err
		}
		return forecast.NewLinearAR(lags, d.Cfg.Forecast.Ridge), nil
	default:
		return nil, fmt.Errorf("unsupported forecast model %q", name)
	}
}
