// Package ingest reads raw metering exports into readings.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"campus-energy/internal/model"
)

// Options describes the layout of a raw CSV export.
type Options struct {
	// TimeColumn and ValueColumn are 0-based column indices.
	TimeColumn  int
	ValueColumn int
	// TimeLayout is a Go time layout; empty tries RFC3339 then
	// "2006-01-02 15:04:05".
	TimeLayout string
	// Location interprets naive timestamps; UTC when nil.
	Location *time.Location
	// HasHeader skips the first row.
	HasHeader bool
}

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
}

// ReadFile parses a CSV file into readings. Rows with an empty value cell
// are skipped; the cleaning step fills the resulting gaps.
func ReadFile(path string, opts Options) ([]model.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	readings, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readings, nil
}

func Read(r io.Reader, opts Options) ([]model.Reading, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []model.Reading
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && opts.HasHeader {
			continue
		}
		maxCol := opts.TimeColumn
		if opts.ValueColumn > maxCol {
			maxCol = opts.ValueColumn
		}
		if len(rec) <= maxCol {
			return nil, fmt.Errorf("line %d: %d columns, need %d", line, len(rec), maxCol+1)
		}

		valStr := strings.TrimSpace(rec[opts.ValueColumn])
		if valStr == "" || strings.EqualFold(valStr, "nan") {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad value %q", line, valStr)
		}

		t, err := parseTime(strings.TrimSpace(rec[opts.TimeColumn]), opts.TimeLayout, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, model.Reading{Time: t.UTC(), Value: val})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable rows")
	}
	return out, nil
}

func parseTime(s, layout string, loc *time.Location) (time.Time, error) {
	if layout != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
		}
		return t, nil
	}
	for _, l := range fallbackLayouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
