package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-energy/internal/model"
)

var cleanStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func readingsAt(start time.Time, step time.Duration, values ...float64) []model.Reading {
	rs := make([]model.Reading, len(values))
	for i, v := range values {
		rs[i] = model.Reading{Time: start.Add(time.Duration(i) * step), Value: v}
	}
	return rs
}

func TestClean_Dense(t *testing.T) {
	rs := readingsAt(cleanStart, 15*time.Minute, 1, 2, 3, 4)
	s, rep, err := Clean(rs, 15*time.Minute, FillBackshift)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3, 4}, s.Values)
	assert.Equal(t, cleanStart, s.Start)
	assert.Empty(t, rep.Filled)
	assert.Empty(t, rep.Duplicates)
}

func TestClean_SortsUnorderedReadings(t *testing.T) {
	step := 15 * time.Minute
	rs := []model.Reading{
		{Time: cleanStart.Add(2 * step), Value: 3},
		{Time: cleanStart, Value: 1},
		{Time: cleanStart.Add(step), Value: 2},
	}
	s, _, err := Clean(rs, step, FillBackshift)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Values)
}

func TestClean_BackshiftFillsFromOneHourEarlier(t *testing.T) {
	step := 15 * time.Minute
	// 6 slots; drop index 4 so the fill reaches back to index 0.
	rs := readingsAt(cleanStart, step, 10, 20, 30, 40, 0, 60)
	rs = append(rs[:4], rs[5:]...)

	s, rep, err := Clean(rs, step, FillBackshift)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Values[4])
	require.Len(t, rep.Filled, 1)
	assert.Equal(t, cleanStart.Add(4*step), rep.Filled[0])
}

func TestClean_BackshiftGapTooEarly(t *testing.T) {
	step := 15 * time.Minute
	// Gap at index 2 has no value one hour (4 steps) earlier.
	rs := []model.Reading{
		{Time: cleanStart, Value: 1},
		{Time: cleanStart.Add(step), Value: 2},
		{Time: cleanStart.Add(3 * step), Value: 4},
	}
	_, _, err := Clean(rs, step, FillBackshift)
	assert.Error(t, err)
}

func TestClean_InterpolateRampsAcrossGap(t *testing.T) {
	step := 15 * time.Minute
	rs := []model.Reading{
		{Time: cleanStart, Value: 10},
		{Time: cleanStart.Add(3 * step), Value: 40},
	}
	s, rep, err := Clean(rs, step, FillInterpolate)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 20, 30, 40}, s.Values, 1e-9)
	assert.Len(t, rep.Filled, 2)
}

func TestClean_BackshiftKeepsFirstDuplicate(t *testing.T) {
	step := 15 * time.Minute
	rs := readingsAt(cleanStart, step, 1, 2, 3)
	rs = append(rs, model.Reading{Time: cleanStart.Add(step), Value: 99})

	s, rep, err := Clean(rs, step, FillBackshift)
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Values[1])
	require.Len(t, rep.Duplicates, 1)
	assert.Equal(t, cleanStart.Add(step), rep.Duplicates[0])
}

func TestClean_InterpolateAveragesDuplicates(t *testing.T) {
	step := 15 * time.Minute
	rs := readingsAt(cleanStart, step, 1, 2, 3)
	rs = append(rs, model.Reading{Time: cleanStart.Add(step), Value: 4})

	s, _, err := Clean(rs, step, FillInterpolate)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, s.Values[1], 1e-9)
}

func TestClean_EmptyInput(t *testing.T) {
	_, _, err := Clean(nil, 15*time.Minute, FillBackshift)
	assert.Error(t, err)
}

func TestClean_UnknownMode(t *testing.T) {
	rs := readingsAt(cleanStart, 15*time.Minute, 1, 2)
	_, _, err := Clean(rs, 15*time.Minute, FillMode("bogus"))
	assert.Error(t, err)
}
