package optimize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-energy/internal/timeseries"
)

func TestBuildIntervals_ConvertsPriceToPerKWh(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	netLoad, err := timeseries.New(start, 15*time.Minute, []float64{100, 120})
	require.NoError(t, err)
	price, err := timeseries.New(start, 15*time.Minute, []float64{40, 250}) // $/MWh
	require.NoError(t, err)

	intervals, err := BuildIntervals(netLoad, price)
	require.NoError(t, err)
	require.Len(t, intervals, 2)

	assert.Equal(t, start, intervals[0].Start)
	assert.Equal(t, start.Add(15*time.Minute), intervals[0].End)
	assert.InDelta(t, 0.04, intervals[0].PricePerKWh, 1e-9)
	assert.InDelta(t, 0.25, intervals[1].PricePerKWh, 1e-9)
	assert.Equal(t, 120.0, intervals[1].NetLoadKW)
}

func TestBuildIntervals_RejectsMisaligned(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a, _ := timeseries.New(start, 15*time.Minute, []float64{1, 2})
	b, _ := timeseries.New(start.Add(time.Minute), 15*time.Minute, []float64{1, 2})
	_, err := BuildIntervals(a, b)
	assert.Error(t, err)

	c, _ := timeseries.New(start, 15*time.Minute, []float64{1})
	_, err = BuildIntervals(a, c)
	assert.Error(t, err)
}

func TestNetLoad(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	demand, _ := timeseries.New(start, 15*time.Minute, []float64{100, 120})
	solar, _ := timeseries.New(start, 15*time.Minute, []float64{30, 50})

	net, err := NetLoad(demand, solar)
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 70}, net.Values)
}

func TestNetLoad_NilSolarPassthrough(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	demand, _ := timeseries.New(start, 15*time.Minute, []float64{100})

	net, err := NetLoad(demand, nil)
	require.NoError(t, err)
	assert.Same(t, demand, net)
}

func TestBaselineCost(t *testing.T) {
	intervals := []Interval{
		{Start: planStart, End: planStart.Add(15 * time.Minute), NetLoadKW: 100, PricePerKWh: 0.2},
		{Start: planStart, End: planStart.Add(time.Hour), NetLoadKW: 50, PricePerKWh: 0.1},
	}
	// 100 kW * 0.25h * 0.2 + 50 kW * 1h * 0.1
	assert.InDelta(t, 10.0, BaselineCost(intervals), 1e-9)
}
