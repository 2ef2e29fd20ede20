package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"campus-energy/internal/ingest"
	"campus-energy/internal/model"
	"campus-energy/internal/timeseries"
)

var (
	ingestBuilding   string
	ingestSignal     string
	ingestTimeCol    int
	ingestValueCol   int
	ingestTimeLayout string
	ingestTimezone   string
	ingestHasHeader  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [csv-file...]",
	Short: "Load raw CSV exports, clean them and store the readings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestBuilding, "building", "", "building id (required; use \"campus\" for the shared price series)")
	ingestCmd.Flags().StringVar(&ingestSignal, "signal", "", "signal: demand|solar|price|weather (required)")
	ingestCmd.Flags().IntVar(&ingestTimeCol, "time-col", 0, "0-based timestamp column")
	ingestCmd.Flags().IntVar(&ingestValueCol, "value-col", 1, "0-based value column")
	ingestCmd.Flags().StringVar(&ingestTimeLayout, "time-layout", "", "Go time layout (default: autodetect)")
	ingestCmd.Flags().StringVar(&ingestTimezone, "tz", "UTC", "timezone of naive timestamps")
	ingestCmd.Flags().BoolVar(&ingestHasHeader, "header", true, "first row is a header")
	_ = ingestCmd.MarkFlagRequired("building")
	_ = ingestCmd.MarkFlagRequired("signal")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	signal := model.Signal(ingestSignal)
	if !signal.Valid() {
		return fmt.Errorf("unknown signal %q", ingestSignal)
	}
	loc, err := time.LoadLocation(ingestTimezone)
	if err != nil {
		return fmt.Errorf("bad timezone %q: %w", ingestTimezone, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	step, err := timeseries.ParseStep(cfg.Forecast.Freq)
	if err != nil {
		return err
	}

	ctx := context.Background()
	total := 0
	for _, path := range args {
		readings, err := ingest.ReadFile(path, ingest.Options{
			TimeColumn:  ingestTimeCol,
			ValueColumn: ingestValueCol,
			TimeLayout:  ingestTimeLayout,
			Location:    loc,
			HasHeader:   ingestHasHeader,
		})
		if err != nil {
			return err
		}

		series, rep, err := timeseries.Clean(readings, step, timeseries.FillMode(cfg.Data.FillMode))
		if err != nil {
			return fmt.Errorf("cleaning %s: %w", path, err)
		}
		cleaned := make([]model.Reading, series.Len())
		for i := range cleaned {
			cleaned[i] = model.Reading{Time: series.TimeAt(i), Value: series.Values[i]}
		}
		if err := st.SaveReadings(ctx, ingestBuilding, signal, cleaned); err != nil {
			return fmt.Errorf("storing %s: %w", path, err)
		}

		fmt.Printf("%s: %d rows (%d gaps filled, %d duplicate timestamps)\n",
			path, series.Len(), len(rep.Filled), len(rep.Duplicates))
		total += series.Len()
	}
	fmt.Printf("Stored %d readings for %s/%s\n", total, ingestBuilding, ingestSignal)
	return nil
}
