// Package timetable places lectures into rooms and timeslots so the
// schedulable part of campus demand lands on cheap forecast prices.
package timetable

import (
	"errors"
	"fmt"
)

// Room is a bookable teaching space.
type Room struct {
	ID       string `yaml:"id"`
	Building string `yaml:"building"`
	Capacity int    `yaml:"capacity"`
	// PowerKW is the extra draw while the room is in use (HVAC, AV,
	// lighting).
	PowerKW float64 `yaml:"power_kw"`
}

// Lecture is one schedulable teaching block.
type Lecture struct {
	ID       string `yaml:"id"`
	Course   string `yaml:"course"`
	Lecturer string `yaml:"lecturer"`
	Students int    `yaml:"students"`
	// DurationSlots is the length in timetable slots.
	DurationSlots int `yaml:"duration_slots"`
	// Days lists the allowed day indices (0-based); empty = any day.
	Days []int `yaml:"days,omitempty"`
	// EarliestSlot/LatestSlot bound the start slot within a day.
	// LatestSlot 0 means "as late as the day permits".
	EarliestSlot int `yaml:"earliest_slot,omitempty"`
	LatestSlot   int `yaml:"latest_slot,omitempty"`
}

// Instance is a complete timetabling problem.
type Instance struct {
	Days        int `yaml:"days"`
	SlotsPerDay int `yaml:"slots_per_day"`
	SlotMinutes int `yaml:"slot_minutes"`

	Rooms    []Room    `yaml:"rooms"`
	Lectures []Lecture `yaml:"lectures"`

	// Price[day][slot] is the forecast price in $/kWh for the slot.
	Price [][]float64 `yaml:"price"`
}

func (in *Instance) Validate() error {
	if in.Days < 1 || in.SlotsPerDay < 1 {
		return errors.New("days and slots_per_day must be >= 1")
	}
	if in.SlotMinutes < 1 {
		return errors.New("slot_minutes must be >= 1")
	}
	if len(in.Rooms) == 0 {
		return errors.New("no rooms")
	}
	if len(in.Lectures) == 0 {
		return errors.New("no lectures")
	}
	if len(in.Price) != in.Days {
		return fmt.Errorf("price has %d days, want %d", len(in.Price), in.Days)
	}
	for d, row := range in.Price {
		if len(row) != in.SlotsPerDay {
			return fmt.Errorf("price day %d has %d slots, want %d", d, len(row), in.SlotsPerDay)
		}
	}
	seen := map[string]bool{}
	for _, r := range in.Rooms {
		if r.ID == "" {
			return errors.New("room with empty id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate room id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Capacity < 1 {
			return fmt.Errorf("room %s: capacity must be >= 1", r.ID)
		}
		if r.PowerKW < 0 {
			return fmt.Errorf("room %s: power_kw must be >= 0", r.ID)
		}
	}
	seen = map[string]bool{}
	for _, l := range in.Lectures {
		if l.ID == "" {
			return errors.New("lecture with empty id")
		}
		if seen[l.ID] {
			return fmt.Errorf("duplicate lecture id %q", l.ID)
		}
		seen[l.ID] = true
		if l.DurationSlots < 1 || l.DurationSlots > in.SlotsPerDay {
			return fmt.Errorf("lecture %s: duration_slots must be in [1, %d]", l.ID, in.SlotsPerDay)
		}
		for _, d := range l.Days {
			if d < 0 || d >= in.Days {
				return fmt.Errorf("lecture %s: day %d out of range", l.ID, d)
			}
		}
		if l.EarliestSlot < 0 || l.EarliestSlot >= in.SlotsPerDay {
			return fmt.Errorf("lecture %s: earliest_slot out of range", l.ID)
		}
		if l.LatestSlot != 0 && (l.LatestSlot < l.EarliestSlot || l.LatestSlot >= in.SlotsPerDay) {
			return fmt.Errorf("lecture %s: latest_slot out of range", l.ID)
		}
	}
	return nil
}

// allowedDays resolves the day restriction: empty means every day.
func (l Lecture) allowedDays(days int) []int {
	if len(l.Days) > 0 {
		return l.Days
	}
	out := make([]int, days)
	for i := range out {
		out[i] = i
	}
	return out
}

// latestStart resolves the start-slot upper bound given the day length.
func (l Lecture) latestStart(slotsPerDay int) int {
	last := slotsPerDay - l.DurationSlots
	if l.LatestSlot != 0 && l.LatestSlot < last {
		last = l.LatestSlot
	}
	return last
}

// Placement assigns a lecture to a room, day and start slot.
type Placement struct {
	LectureID string
	RoomID    string
	Day       int
	StartSlot int
}

// Schedule is a complete assignment with its forecast energy cost.
type Schedule struct {
	Placements []Placement
	// EnergyCost is the sum over occupied slots of room draw x slot
	// duration x price ($).
	EnergyCost float64
}
