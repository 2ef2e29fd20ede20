package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-energy/internal/api/models"
	"campus-energy/internal/config"
	"campus-energy/internal/model"
	"campus-energy/internal/store"
	"campus-energy/internal/timetable"
)

var apiStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testDeps(t *testing.T) Deps {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		Campus: model.Campus{
			Name: "test-campus",
			Buildings: []model.Building{
				{ID: "lib", Name: "Library"},
				{ID: "eng", Name: "Engineering", PV: &model.PVArray{Name: "roof", PeakPowerKW: 50}},
			},
		},
		Battery: config.BatteryConfig{
			EnergyCapacityKWh:   100,
			PowerCapacityKW:     50,
			ChargeEfficiency:    1,
			DischargeEfficiency: 1,
			MaxSOC:              1,
		},
		Forecast: config.ForecastConfig{
			Model:         "seasonal-naive",
			Freq:          "1h",
			HorizonSteps:  24,
			MaxLag:        48,
			PACFThreshold: 0.05,
		},
		Data: config.DataConfig{FillMode: "backshift"},
	}
	return Deps{Store: st, Cfg: cfg, Log: slog.Default()}
}

func seedHourly(t *testing.T, d Deps, building string, signal model.Signal, hours int, value func(i int) float64) {
	t.Helper()
	rs := make([]model.Reading, hours)
	for i := range rs {
		rs[i] = model.Reading{Time: apiStart.Add(time.Duration(i) * time.Hour), Value: value(i)}
	}
	require.NoError(t, d.Store.SaveReadings(context.Background(), building, signal, rs))
}

func testRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/buildings", d.ListBuildings)
	r.GET("/api/v1/rank", d.RankBuildings)
	r.POST("/api/v1/forecast", d.RunForecast)
	r.POST("/api/v1/schedule/battery", d.RunBatterySchedule)
	r.POST("/api/v1/schedule/timetable", d.RunTimetable)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListBuildings(t *testing.T) {
	d := testDeps(t)
	w := doJSON(t, testRouter(d), http.MethodGet, "/api/v1/buildings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BuildingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Buildings, 2)
	assert.False(t, resp.Buildings[0].PV)
	assert.True(t, resp.Buildings[1].PV)
}

func TestRunForecast(t *testing.T) {
	d := testDeps(t)
	// Two days of a daily load pattern.
	seedHourly(t, d, "lib", model.SignalDemand, 48, func(i int) float64 {
		return 100 + 20*float64(i%24)
	})

	req := models.ForecastRequest{
		Building:     "lib",
		Signal:       "demand",
		From:         apiStart.Format(time.RFC3339),
		To:           apiStart.Add(48 * time.Hour).Format(time.RFC3339),
		HorizonSteps: 6,
	}
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/forecast", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "seasonal-naive", resp.Model)
	require.Len(t, resp.Points, 6)
	// Seasonal naive repeats the daily pattern.
	assert.InDelta(t, 100.0, resp.Points[0].Value, 1e-9)
	assert.InDelta(t, 120.0, resp.Points[1].Value, 1e-9)

	// The run is persisted.
	stored, err := d.Store.Forecast(context.Background(), "lib", model.SignalDemand, "seasonal-naive", resp.IssuedAt)
	require.NoError(t, err)
	assert.Len(t, stored, 6)
}

func TestRunForecast_BadSignal(t *testing.T) {
	d := testDeps(t)
	req := models.ForecastRequest{
		Building: "lib",
		Signal:   "wind",
		From:     apiStart.Format(time.RFC3339),
		To:       apiStart.Add(time.Hour).Format(time.RFC3339),
	}
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/forecast", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_SIGNAL", resp.Error.Code)
}

func TestRunForecast_MissingFields(t *testing.T) {
	d := testDeps(t)
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/forecast", map[string]string{"building": "lib"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunBatterySchedule(t *testing.T) {
	d := testDeps(t)
	seedHourly(t, d, "lib", model.SignalDemand, 24, func(i int) float64 { return 40 })
	// Cheap nights, expensive evenings ($/MWh).
	seedHourly(t, d, "campus", model.SignalPrice, 24, func(i int) float64 {
		if i >= 17 && i < 21 {
			return 400
		}
		return 20
	})

	req := models.BatteryScheduleRequest{
		Building:      "lib",
		From:          apiStart.Format(time.RFC3339),
		To:            apiStart.Add(24 * time.Hour).Format(time.RFC3339),
		IncludeLedger: true,
	}
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/schedule/battery", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.BatteryScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 24, resp.Intervals)
	assert.Positive(t, resp.Saving)
	assert.Less(t, resp.TotalCost, resp.BaselineCost)
	assert.Len(t, resp.Ledger, 24)
}

func TestRunBatterySchedule_NoData(t *testing.T) {
	d := testDeps(t)
	req := models.BatteryScheduleRequest{
		Building: "lib",
		From:     apiStart.Format(time.RFC3339),
		To:       apiStart.Add(time.Hour).Format(time.RFC3339),
	}
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/schedule/battery", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunTimetable(t *testing.T) {
	d := testDeps(t)
	req := models.TimetableRequest{
		Instance: timetable.Instance{
			Days:        1,
			SlotsPerDay: 4,
			SlotMinutes: 60,
			Rooms: []timetable.Room{
				{ID: "r1", Building: "lib", Capacity: 40, PowerKW: 8},
			},
			Lectures: []timetable.Lecture{
				{ID: "algo-1", Course: "algo", Lecturer: "ada", Students: 30, DurationSlots: 1},
			},
			Price: [][]float64{{0.4, 0.1, 0.3, 0.2}},
		},
	}
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/schedule/timetable", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.TimetableResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Placements, 1)
	assert.Equal(t, 1, resp.Placements[0].StartSlot)
	assert.InDelta(t, 0.8, resp.EnergyCost, 1e-9)
}

func TestRunTimetable_Infeasible(t *testing.T) {
	d := testDeps(t)
	req := models.TimetableRequest{
		Instance: timetable.Instance{
			Days:        1,
			SlotsPerDay: 4,
			SlotMinutes: 60,
			Rooms: []timetable.Room{
				{ID: "r1", Building: "lib", Capacity: 10, PowerKW: 8},
			},
			Lectures: []timetable.Lecture{
				{ID: "big", Students: 500, DurationSlots: 1},
			},
			Price: [][]float64{{0.4, 0.1, 0.3, 0.2}},
		},
	}
	w := doJSON(t, testRouter(d), http.MethodPost, "/api/v1/schedule/timetable", req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRankBuildings(t *testing.T) {
	d := testDeps(t)
	seedHourly(t, d, "lib", model.SignalDemand, 24, func(i int) float64 { return 40 })
	seedHourly(t, d, "eng", model.SignalDemand, 24, func(i int) float64 { return 80 })
	seedHourly(t, d, "campus", model.SignalPrice, 24, func(i int) float64 {
		if i%2 == 0 {
			return 20
		}
		return 300
	})

	path := "/api/v1/rank?from=" + apiStart.Format(time.RFC3339) +
		"&to=" + apiStart.Add(24*time.Hour).Format(time.RFC3339)
	w := doJSON(t, testRouter(d), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.RankResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	assert.GreaterOrEqual(t, resp.Entries[0].PlannedSaving, resp.Entries[1].PlannedSaving)
}
