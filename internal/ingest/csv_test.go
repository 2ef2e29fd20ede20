package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_WithHeader(t *testing.T) {
	in := strings.NewReader(
		"time,kw\n" +
			"2024-03-01T00:00:00Z,120.5\n" +
			"2024-03-01T00:15:00Z,118.2\n")

	readings, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1, HasHeader: true})
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), readings[0].Time)
	assert.Equal(t, 120.5, readings[0].Value)
}

func TestRead_SkipsEmptyAndNaNValues(t *testing.T) {
	in := strings.NewReader(
		"2024-03-01 00:00:00,10\n" +
			"2024-03-01 00:15:00,\n" +
			"2024-03-01 00:30:00,NaN\n" +
			"2024-03-01 00:45:00,12\n")

	readings, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1})
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 12.0, readings[1].Value)
}

func TestRead_NaiveTimestampsUseLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	in := strings.NewReader("2024-03-01 12:00:00,5\n")
	readings, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1, Location: loc})
	require.NoError(t, err)

	// Madrid is UTC+1 in winter.
	assert.Equal(t, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC), readings[0].Time)
}

func TestRead_ExplicitLayout(t *testing.T) {
	in := strings.NewReader("01/03/2024 00:15,7\n")
	readings, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1, TimeLayout: "02/01/2006 15:04"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 15, 0, 0, time.UTC), readings[0].Time)
}

func TestRead_BadValue(t *testing.T) {
	in := strings.NewReader("2024-03-01T00:00:00Z,not-a-number\n")
	_, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1})
	assert.Error(t, err)
}

func TestRead_BadTimestamp(t *testing.T) {
	in := strings.NewReader("yesterday,5\n")
	_, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1})
	assert.Error(t, err)
}

func TestRead_MissingColumns(t *testing.T) {
	in := strings.NewReader("2024-03-01T00:00:00Z\n")
	_, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1})
	assert.Error(t, err)
}

func TestRead_NoUsableRows(t *testing.T) {
	in := strings.NewReader("time,kw\n")
	_, err := Read(in, Options{TimeColumn: 0, ValueColumn: 1, HasHeader: true})
	assert.Error(t, err)
}
