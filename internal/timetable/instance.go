package timetable

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadInstance reads a timetabling problem from YAML.
func LoadInstance(path string) (*Instance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in Instance
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("parsing timetable instance: %w", err)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// WriteScheduleCSV writes one row per placement.
func WriteScheduleCSV(path string, in *Instance, sched *Schedule) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	lectures := map[string]Lecture{}
	for _, l := range in.Lectures {
		lectures[l.ID] = l
	}

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"lecture", "course", "lecturer", "room", "day", "start_slot", "end_slot"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range sched.Placements {
		l := lectures[p.LectureID]
		row := []string{
			p.LectureID,
			l.Course,
			l.Lecturer,
			p.RoomID,
			strconv.Itoa(p.Day),
			strconv.Itoa(p.StartSlot),
			strconv.Itoa(p.StartSlot + l.DurationSlots),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
