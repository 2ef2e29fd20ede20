package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"campus-energy/internal/optimize"
	"campus-energy/internal/publish"
)

var (
	pubBuilding  string
	pubPriceBldg string
	pubFrom      string
	pubTo        string
	pubPerDay    bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Plan battery dispatch and push setpoints to the MQTT broker",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&pubBuilding, "building", "", "building id (required)")
	publishCmd.Flags().StringVar(&pubPriceBldg, "price-building", "campus", "building id holding the price signal")
	publishCmd.Flags().StringVar(&pubFrom, "from", "", "range start, RFC3339 (required)")
	publishCmd.Flags().StringVar(&pubTo, "to", "", "range end, RFC3339 (required)")
	publishCmd.Flags().BoolVar(&pubPerDay, "per-day", false, "optimize each day independently")
	_ = publishCmd.MarkFlagRequired("building")
	_ = publishCmd.MarkFlagRequired("from")
	_ = publishCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	from, err := time.Parse(time.RFC3339, pubFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, pubTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	opt, err := seriesOptions(cfg)
	if err != nil {
		return err
	}
	intervals, err := st.LoadIntervals(context.Background(), pubBuilding, pubPriceBldg, from, to, opt)
	if err != nil {
		return err
	}

	result, err := planAndSimulate(intervals, cfg.Battery, optimize.PlanParams{PerDay: pubPerDay})
	if err != nil {
		return err
	}

	pub, err := publish.New(cfg.MQTT)
	if err != nil {
		return err
	}
	defer pub.Close()

	if err := pub.PublishLedger(result.Ledger); err != nil {
		return err
	}
	fmt.Printf("Published %d setpoints to %s (saving $%.2f)\n", len(result.Ledger), cfg.MQTT.Broker, result.Saving)
	return nil
}
