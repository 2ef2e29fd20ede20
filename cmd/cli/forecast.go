package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"campus-energy/internal/config"
	"campus-energy/internal/forecast"
	"campus-energy/internal/model"
	"campus-energy/internal/store"
	"campus-energy/internal/timeseries"
)

var (
	fcBuilding string
	fcSignal   string
	fcModel    string
	fcFrom     string
	fcTo       string
	fcHorizon  int
	fcOut      string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Fit a model on stored history and predict the next horizon",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&fcBuilding, "building", "", "building id (required)")
	forecastCmd.Flags().StringVar(&fcSignal, "signal", "demand", "signal: demand|solar|price|weather")
	forecastCmd.Flags().StringVar(&fcModel, "model", "", "model override: seasonal-naive|linear-ar")
	forecastCmd.Flags().StringVar(&fcFrom, "from", "", "training start, RFC3339 (required)")
	forecastCmd.Flags().StringVar(&fcTo, "to", "", "training end, RFC3339 (required)")
	forecastCmd.Flags().IntVar(&fcHorizon, "horizon", 0, "horizon in steps (default from config)")
	forecastCmd.Flags().StringVar(&fcOut, "out", "", "optional CSV output path")
	_ = forecastCmd.MarkFlagRequired("building")
	_ = forecastCmd.MarkFlagRequired("from")
	_ = forecastCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	signal := model.Signal(fcSignal)
	if !signal.Valid() {
		return fmt.Errorf("unknown signal %q", fcSignal)
	}
	from, err := time.Parse(time.RFC3339, fcFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, fcTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	ctx := context.Background()
	opt, err := seriesOptions(cfg)
	if err != nil {
		return err
	}
	series, _, err := st.LoadSeries(ctx, fcBuilding, signal, from, to, opt)
	if err != nil {
		return err
	}

	m, err := buildForecaster(cfg, fcModel, signal, series)
	if err != nil {
		return err
	}
	if err := m.Fit(series); err != nil {
		return err
	}

	horizon := fcHorizon
	if horizon <= 0 {
		horizon = cfg.Forecast.HorizonSteps
	}
	points, err := m.Predict(horizon)
	if err != nil {
		return err
	}
	quantiles := cfg.Forecast.Quantiles
	if len(quantiles) == 0 {
		quantiles = forecast.DefaultQuantiles
	}
	bands, err := forecast.QuantileBands(points, m.Residuals(), quantiles)
	if err != nil {
		return err
	}

	issuedAt := time.Now().UTC()
	readings := make([]model.Reading, horizon)
	horizonStart := series.TimeAt(series.Len())
	for i, v := range points {
		readings[i] = model.Reading{Time: horizonStart.Add(time.Duration(i) * series.Step), Value: v}
	}
	if err := st.SaveForecast(ctx, fcBuilding, signal, m.Name(), issuedAt, readings); err != nil {
		return fmt.Errorf("persisting forecast: %w", err)
	}

	if fcOut != "" {
		if err := writeForecastCSV(fcOut, readings, bands, quantiles); err != nil {
			return err
		}
		fmt.Printf("Wrote %d rows to %s\n", len(readings), fcOut)
	}
	fmt.Printf("Model %s: %d steps from %s\n", m.Name(), horizon, horizonStart.Format(time.RFC3339))
	return nil
}

func seriesOptions(cfg *config.Config) (store.SeriesOptions, error) {
	step, err := timeseries.ParseStep(cfg.Forecast.Freq)
	if err != nil {
		return store.SeriesOptions{}, err
	}
	return store.SeriesOptions{
		Step:     step,
		FillMode: timeseries.FillMode(cfg.Data.FillMode),
	}, nil
}

func buildForecaster(cfg *config.Config, name string, signal model.Signal, series *timeseries.Series) (forecast.Forecaster, error) {
	if name == "" {
		name = cfg.Forecast.Model
	}
	switch name {
	case "seasonal-naive":
		return forecast.NewSeasonalNaive(series.StepsPerDay()), nil
	case "linear-ar":
		startAfter := cfg.Forecast.OperationalLag
		if cfg.Forecast.DayAhead || signal == model.SignalPrice {
			startAfter = timeseries.DayAheadStartAfter(series.StepsPerDay(), cfg.Forecast.OperationalLag)
		}
		lags, err := forecast.AutoLags(series, cfg.Forecast.MaxLag, cfg.Forecast.PACFThreshold, startAfter)
		if err != nil {
			return nil, err
		}
		return forecast.NewLinearAR(lags, cfg.Forecast.Ridge), nil
	default:
		return nil, fmt.Errorf("unsupported forecast model %q", name)
	}
}

func writeForecastCSV(path string, readings []model.Reading, bands [][]float64, quantiles []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time", "value"}
	for _, q := range quantiles {
		header = append(header, fmt.Sprintf("q%02.0f", q*100))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range readings {
		row := []string{
			r.Time.Format(time.RFC3339),
			strconv.FormatFloat(r.Value, 'f', 4, 64),
		}
		for _, v := range bands[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 4, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
