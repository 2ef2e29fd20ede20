package store

import (
	"context"
	"fmt"
	"time"

	"campus-energy/internal/model"
	"campus-energy/internal/optimize"
	"campus-energy/internal/timeseries"
)

// SeriesOptions controls how stored readings become a regular series.
type SeriesOptions struct {
	Step     time.Duration
	FillMode timeseries.FillMode
}

// LoadSeries reads a signal range and cleans it into a regular series.
func (s *Store) LoadSeries(ctx context.Context, building string, signal model.Signal, from, to time.Time, opt SeriesOptions) (*timeseries.Series, timeseries.CleanReport, error) {
	var rep timeseries.CleanReport
	readings, err := s.Readings(ctx, building, signal, from, to)
	if err != nil {
		return nil, rep, err
	}
	if len(readings) == 0 {
		return nil, rep, fmt.Errorf("no %s readings for %s in range", signal, building)
	}
	return timeseries.Clean(readings, opt.Step, opt.FillMode)
}

// LoadOptionalSeries is LoadSeries but returns nil for a signal with no
// stored data (a building without PV, for example).
func (s *Store) LoadOptionalSeries(ctx context.Context, building string, signal model.Signal, from, to time.Time, opt SeriesOptions) (*timeseries.Series, timeseries.CleanReport, error) {
	var rep timeseries.CleanReport
	readings, err := s.Readings(ctx, building, signal, from, to)
	if err != nil {
		return nil, rep, err
	}
	if len(readings) == 0 {
		return nil, rep, nil
	}
	return timeseries.Clean(readings, opt.Step, opt.FillMode)
}

// LoadIntervals builds scheduling intervals for a building: demand minus
// any solar, priced with the shared price series stored under
// priceBuilding.
func (s *Store) LoadIntervals(ctx context.Context, building, priceBuilding string, from, to time.Time, opt SeriesOptions) ([]optimize.Interval, error) {
	demand, _, err := s.LoadSeries(ctx, building, model.SignalDemand, from, to, opt)
	if err != nil {
		return nil, err
	}
	solar, _, err := s.LoadOptionalSeries(ctx, building, model.SignalSolar, from, to, opt)
	if err != nil {
		return nil, err
	}
	price, _, err := s.LoadSeries(ctx, priceBuilding, model.SignalPrice, from, to, opt)
	if err != nil {
		return nil, err
	}

	aligned, err := timeseries.Align(demand, solar, price)
	if err != nil {
		return nil, err
	}
	demand, solar, price = aligned[0], aligned[1], aligned[2]

	net, err := optimize.NetLoad(demand, solar)
	if err != nil {
		return nil, err
	}
	return optimize.BuildIntervals(net, price)
}
