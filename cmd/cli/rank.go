package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"campus-energy/internal/analysis"
	"campus-energy/internal/optimize"
)

var (
	rkPriceBldg string
	rkFrom      string
	rkTo        string
	rkLimit     int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank buildings by the saving a battery would achieve",
	Long: `rank plans the configured battery against every building's stored net
load and sorts buildings by the achieved saving, highest first.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rkPriceBldg, "price-building", "campus", "building id holding the price signal")
	rankCmd.Flags().StringVar(&rkFrom, "from", "", "range start, RFC3339 (required)")
	rankCmd.Flags().StringVar(&rkTo, "to", "", "range end, RFC3339 (required)")
	rankCmd.Flags().IntVar(&rkLimit, "limit", 0, "show at most N buildings (0 = all)")
	_ = rankCmd.MarkFlagRequired("from")
	_ = rankCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	from, err := time.Parse(time.RFC3339, rkFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, rkTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	ctx := context.Background()
	buildings, err := st.Buildings(ctx)
	if err != nil {
		return err
	}
	opt, err := seriesOptions(cfg)
	if err != nil {
		return err
	}

	byBuilding := make(map[string][]optimize.Interval)
	for _, b := range buildings {
		if b == rkPriceBldg {
			continue
		}
		intervals, err := st.LoadIntervals(ctx, b, rkPriceBldg, from, to, opt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", b, err)
			continue
		}
		byBuilding[b] = intervals
	}
	if len(byBuilding) == 0 {
		return fmt.Errorf("no buildings with data in range")
	}

	ranked, err := analysis.RankBySaving(byBuilding, cfg.Battery.ToModelParams(), cfg.Battery.InitialSOC)
	if err != nil {
		return err
	}
	if rkLimit > 0 && len(ranked) > rkLimit {
		ranked = ranked[:rkLimit]
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"Building", "Peak kW", "Mean kW", "Spread $/kWh", "Baseline $", "Saving $"})
	for _, p := range ranked {
		table.Append([]string{
			p.BuildingID,
			fmt.Sprintf("%.1f", p.PeakLoadKW),
			fmt.Sprintf("%.1f", p.MeanLoadKW),
			fmt.Sprintf("%.4f", p.SpreadP95P05),
			fmt.Sprintf("%.2f", p.BaselineCost),
			fmt.Sprintf("%.2f", p.PlannedSaving),
		})
	}
	return table.Render()
}
