package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-energy/internal/model"
	"campus-energy/internal/timeseries"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func quarterReadings(start time.Time, values ...float64) []model.Reading {
	rs := make([]model.Reading, len(values))
	for i, v := range values {
		rs[i] = model.Reading{Time: start.Add(time.Duration(i) * 15 * time.Minute), Value: v}
	}
	return rs
}

var storeStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestSaveAndLoadReadings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 10, 11, 12)))

	got, err := s.Readings(ctx, "lib", model.SignalDemand, storeStart, storeStart.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 10.0, got[0].Value)
	assert.Equal(t, storeStart.Add(30*time.Minute), got[2].Time)
}

func TestSaveReadings_UpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 10)))
	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 99)))

	got, err := s.Readings(ctx, "lib", model.SignalDemand, storeStart, storeStart.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 99.0, got[0].Value)
}

func TestReadings_RangeIsHalfOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 1, 2, 3)))

	got, err := s.Readings(ctx, "lib", model.SignalDemand, storeStart, storeStart.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadings_SignalsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 1)))
	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalSolar, quarterReadings(storeStart, 2)))

	got, err := s.Readings(ctx, "lib", model.SignalSolar, storeStart, storeStart.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Value)
}

func TestSaveAndLoadForecast(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	issued := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveForecast(ctx, "lib", model.SignalDemand, "seasonal-naive", issued, quarterReadings(storeStart, 5, 6)))

	got, err := s.Forecast(ctx, "lib", model.SignalDemand, "seasonal-naive", issued)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 6.0, got[1].Value)

	none, err := s.Forecast(ctx, "lib", model.SignalDemand, "linear-ar", issued)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuildings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 1)))
	require.NoError(t, s.SaveReadings(ctx, "eng", model.SignalDemand, quarterReadings(storeStart, 1)))

	got, err := s.Buildings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "lib"}, got)
}

func TestLoadSeries_CleansGaps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Drop the reading at +75 min; backshift fill copies from one hour
	// earlier.
	rs := quarterReadings(storeStart, 1, 2, 3, 4, 5, 0, 7)
	rs = append(rs[:5], rs[6:]...)
	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, rs))

	series, rep, err := s.LoadSeries(ctx, "lib", model.SignalDemand, storeStart, storeStart.Add(2*time.Hour), SeriesOptions{
		Step:     15 * time.Minute,
		FillMode: timeseries.FillBackshift,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, series.Values[5])
	assert.Len(t, rep.Filled, 1)
}

func TestLoadOptionalSeries_NilWhenNoRows(t *testing.T) {
	s := newTestStore(t)
	series, _, err := s.LoadOptionalSeries(context.Background(), "lib", model.SignalSolar, storeStart, storeStart.Add(time.Hour), SeriesOptions{
		Step:     15 * time.Minute,
		FillMode: timeseries.FillBackshift,
	})
	require.NoError(t, err)
	assert.Nil(t, series)
}

func TestLoadIntervals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	opt := SeriesOptions{Step: 15 * time.Minute, FillMode: timeseries.FillBackshift}

	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalDemand, quarterReadings(storeStart, 100, 120)))
	require.NoError(t, s.SaveReadings(ctx, "lib", model.SignalSolar, quarterReadings(storeStart, 20, 30)))
	require.NoError(t, s.SaveReadings(ctx, "campus", model.SignalPrice, quarterReadings(storeStart, 40, 50)))

	intervals, err := s.LoadIntervals(ctx, "lib", "campus", storeStart, storeStart.Add(time.Hour), opt)
	require.NoError(t, err)
	require.Len(t, intervals, 2)

	assert.InDelta(t, 80.0, intervals[0].NetLoadKW, 1e-9)
	assert.InDelta(t, 0.04, intervals[0].PricePerKWh, 1e-9)
	assert.InDelta(t, 90.0, intervals[1].NetLoadKW, 1e-9)
}
