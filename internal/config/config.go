package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"campus-energy/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Campus model.Campus `yaml:"campus"`

	// Optional: load battery parameters from a separate YAML.
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string        `yaml:"battery_file"`
	Battery     BatteryConfig `yaml:"battery"`

	Strategy StrategyConfig `yaml:"strategy"`
	Forecast ForecastConfig `yaml:"forecast"`
	Data     DataConfig     `yaml:"data"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

// StrategyConfig selects the dispatch strategy the battery command runs:
// "plan" (the DP planner), "threshold" or "window", with strategy-specific
// params.
type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type BatteryConfig struct {
	Name                  string  `yaml:"name"`
	EnergyCapacityKWh     float64 `yaml:"energy_capacity_kwh"`
	PowerCapacityKW       float64 `yaml:"power_capacity_kw"`
	ChargeEfficiency      float64 `yaml:"charge_efficiency"`
	DischargeEfficiency   float64 `yaml:"discharge_efficiency"`
	MinSOC                float64 `yaml:"min_soc"`
	MaxSOC                float64 `yaml:"max_soc"`
	InitialSOC            float64 `yaml:"initial_soc"`
	DegradationCostPerKWh float64 `yaml:"degradation_cost_per_kwh"`
}

type ForecastConfig struct {
	// Model is "seasonal-naive" or "linear-ar".
	Model string `yaml:"model"`
	// Freq is the series frequency: "15min", "1h" or "4h".
	Freq string `yaml:"freq"`
	// HorizonSteps is the prediction length per forecast origin.
	HorizonSteps int `yaml:"horizon_steps"`
	// MaxLag bounds the PACF lag search for linear-ar.
	MaxLag int `yaml:"max_lag"`
	// PACFThreshold selects lags for linear-ar.
	PACFThreshold float64 `yaml:"pacf_threshold"`
	// Ridge is the regularization weight for linear-ar.
	Ridge float64 `yaml:"ridge"`
	// OperationalLag is the publication delay in steps.
	OperationalLag int `yaml:"operational_lag"`
	// DayAhead restricts lags to those known at auction time.
	DayAhead bool `yaml:"day_ahead"`
	// Quantiles for the probabilistic bands; empty uses the defaults.
	Quantiles []float64 `yaml:"quantiles,omitempty"`
}

type DataConfig struct {
	// DBPath is the SQLite file; default "./campus.db".
	DBPath string `yaml:"db_path"`
	// FillMode is "backshift" or "interpolate".
	FillMode string `yaml:"fill_mode"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"` // e.g. "tcp://localhost:1883"
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// DefaultConfigPath is where the CLI looks when --config is not set.
func DefaultConfigPath() string {
	return "config.yaml"
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		batteryPath := c.BatteryFile
		if !filepath.IsAbs(batteryPath) {
			// Prefer paths relative to the config file, falling back to the
			// working directory.
			cand := filepath.Join(filepath.Dir(path), batteryPath)
			if _, err := os.Stat(cand); err == nil {
				batteryPath = cand
			}
		}
		loaded, err := loadBatteryFile(batteryPath)
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	// If initial_soc is not provided, default it to min_soc so schedules
	// cannot profit from free starting inventory.
	if c.Battery.InitialSOC == 0 {
		c.Battery.InitialSOC = c.Battery.MinSOC
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = "plan"
	}
	if c.Forecast.Model == "" {
		c.Forecast.Model = "seasonal-naive"
	}
	if c.Forecast.Freq == "" {
		c.Forecast.Freq = "15min"
	}
	if c.Forecast.HorizonSteps == 0 {
		c.Forecast.HorizonSteps = 96
	}
	if c.Forecast.MaxLag == 0 {
		c.Forecast.MaxLag = 200
	}
	if c.Forecast.PACFThreshold == 0 {
		c.Forecast.PACFThreshold = 0.05
	}
	if c.Data.DBPath == "" {
		c.Data.DBPath = "campus.db"
	}
	if c.Data.FillMode == "" {
		c.Data.FillMode = "backshift"
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Strategy.Name {
	case "plan", "threshold", "window":
	default:
		return fmt.Errorf("unsupported strategy %q", c.Strategy.Name)
	}
	switch c.Forecast.Model {
	case "seasonal-naive", "linear-ar":
	default:
		return fmt.Errorf("unsupported forecast model %q", c.Forecast.Model)
	}
	switch c.Data.FillMode {
	case "backshift", "interpolate":
	default:
		return fmt.Errorf("unsupported fill mode %q", c.Data.FillMode)
	}
	if c.Forecast.HorizonSteps < 1 {
		return errors.New("forecast.horizon_steps must be >= 1")
	}
	// Validate battery params by constructing a model.Battery.
	if c.Battery.EnergyCapacityKWh != 0 || c.Battery.PowerCapacityKW != 0 {
		if _, err := model.NewBattery(c.Battery.ToModelParams(), c.Battery.InitialSOC); err != nil {
			return fmt.Errorf("battery config invalid: %w", err)
		}
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" || c.MQTT.Topic == "" {
			return errors.New("mqtt.broker and mqtt.topic are required when mqtt is enabled")
		}
	}
	return nil
}

func (b BatteryConfig) ToModelParams() model.BatteryParams {
	return model.BatteryParams{
		EnergyCapacityKWh:     b.EnergyCapacityKWh,
		PowerCapacityKW:       b.PowerCapacityKW,
		ChargeEfficiency:      b.ChargeEfficiency,
		DischargeEfficiency:   b.DischargeEfficiency,
		MinSOC:                b.MinSOC,
		MaxSOC:                b.MaxSOC,
		DegradationCostPerKWh: b.DegradationCostPerKWh,
	}
}

// LoadBatteryFile reads a standalone battery YAML (the battery_file
// shape) without touching the rest of the config.
func LoadBatteryFile(path string) (BatteryConfig, error) {
	return loadBatteryFile(path)
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

func loadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, err
	}
	return w.Battery, nil
}

// MergeBattery overlays non-zero fields from override onto base.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.EnergyCapacityKWh != 0 {
		out.EnergyCapacityKWh = override.EnergyCapacityKWh
	}
	if override.PowerCapacityKW != 0 {
		out.PowerCapacityKW = override.PowerCapacityKW
	}
	if override.ChargeEfficiency != 0 {
		out.ChargeEfficiency = override.ChargeEfficiency
	}
	if override.DischargeEfficiency != 0 {
		out.DischargeEfficiency = override.DischargeEfficiency
	}
	if override.MinSOC != 0 {
		out.MinSOC = override.MinSOC
	}
	if override.MaxSOC != 0 {
		out.MaxSOC = override.MaxSOC
	}
	if override.InitialSOC != 0 {
		out.InitialSOC = override.InitialSOC
	}
	if override.DegradationCostPerKWh != 0 {
		out.DegradationCostPerKWh = override.DegradationCostPerKWh
	}
	return out
}
