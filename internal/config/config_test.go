package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
campus:
  name: north-campus
  buildings:
    - id: lib
      name: Library
    - id: eng
      name: Engineering
      pv:
        name: eng-roof
        peak_power_kw: 120
battery:
  name: main
  energy_capacity_kwh: 500
  power_capacity_kw: 250
  charge_efficiency: 0.95
  discharge_efficiency: 0.95
  min_soc: 0.1
  max_soc: 0.9
forecast:
  model: linear-ar
  horizon_steps: 96
data:
  db_path: campus.db
`

func TestLoad_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", validConfig)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "north-campus", c.Campus.Name)
	assert.Equal(t, "linear-ar", c.Forecast.Model)
	assert.Equal(t, 500.0, c.Battery.EnergyCapacityKWh)

	b, ok := c.Campus.Building("eng")
	require.True(t, ok)
	require.NotNil(t, b.PV)
	assert.Equal(t, 120.0, b.PV.PeakPowerKW)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "campus:\n  name: c\n")
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "plan", c.Strategy.Name)
	assert.Equal(t, "seasonal-naive", c.Forecast.Model)
	assert.Equal(t, "15min", c.Forecast.Freq)
	assert.Equal(t, 96, c.Forecast.HorizonSteps)
	assert.Equal(t, "campus.db", c.Data.DBPath)
	assert.Equal(t, "backshift", c.Data.FillMode)
}

func TestLoad_StrategyWithParams(t *testing.T) {
	cfg := `
strategy:
  name: threshold
  params:
    charge_below: 0.02
    discharge_above: 0.3
`
	path := writeFile(t, t.TempDir(), "config.yaml", cfg)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "threshold", c.Strategy.Name)
	assert.Equal(t, 0.02, c.Strategy.Params["charge_below"])
}

func TestLoad_RejectsUnknownStrategy(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "strategy:\n  name: milp\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InitialSOCDefaultsToMinSOC(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", validConfig)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, c.Battery.InitialSOC)
}

func TestLoad_RejectsUnknownModel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "forecast:\n  model: prophet\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidBattery(t *testing.T) {
	cfg := `
battery:
  energy_capacity_kwh: 100
  power_capacity_kw: 50
  charge_efficiency: 1.5
  discharge_efficiency: 0.9
  max_soc: 1
`
	path := writeFile(t, t.TempDir(), "config.yaml", cfg)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MQTTRequiresBrokerAndTopic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "mqtt:\n  enabled: true\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_BatteryFileMergesWithInlineOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "battery.yaml", `
battery:
  name: warehouse
  energy_capacity_kwh: 1000
  power_capacity_kw: 400
  charge_efficiency: 0.92
  discharge_efficiency: 0.92
  max_soc: 1
`)
	path := writeFile(t, dir, "config.yaml", `
battery_file: battery.yaml
battery:
  power_capacity_kw: 300
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", c.Battery.Name)
	assert.Equal(t, 1000.0, c.Battery.EnergyCapacityKWh)
	// Inline override wins.
	assert.Equal(t, 300.0, c.Battery.PowerCapacityKW)
}

func TestMergeBattery_ZeroFieldsKeepBase(t *testing.T) {
	base := BatteryConfig{Name: "a", EnergyCapacityKWh: 100, MinSOC: 0.1}
	out := MergeBattery(base, BatteryConfig{EnergyCapacityKWh: 200})

	assert.Equal(t, "a", out.Name)
	assert.Equal(t, 200.0, out.EnergyCapacityKWh)
	assert.Equal(t, 0.1, out.MinSOC)
}
