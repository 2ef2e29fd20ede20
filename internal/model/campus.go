package model

// Signal identifies one of the campus time series kinds.
type Signal string

const (
	SignalDemand  Signal = "demand" // building consumption, kW
	SignalSolar   Signal = "solar"  // PV production, kW
	SignalPrice   Signal = "price"  // wholesale price, $/MWh
	SignalWeather Signal = "weather"
)

func (s Signal) Valid() bool {
	switch s {
	case SignalDemand, SignalSolar, SignalPrice, SignalWeather:
		return true
	}
	return false
}

// PVArray describes a rooftop installation co-located with a building.
type PVArray struct {
	Name        string  `yaml:"name" json:"name"`
	PeakPowerKW float64 `yaml:"peak_power_kw" json:"peak_power_kw"`
}

// Building is one metered campus building.
type Building struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	PV       *PVArray `yaml:"pv,omitempty" json:"pv,omitempty"`
	// BaseLoadKW is the always-on draw used when sizing timetable costs.
	BaseLoadKW float64 `yaml:"base_load_kw,omitempty" json:"base_load_kw,omitempty"`
}

// Campus groups the buildings behind a single grid connection.
type Campus struct {
	Name      string     `yaml:"name" json:"name"`
	Buildings []Building `yaml:"buildings" json:"buildings"`
}

func (c Campus) Building(id string) (Building, bool) {
	for _, b := range c.Buildings {
		if b.ID == id {
			return b, true
		}
	}
	return Building{}, false
}
