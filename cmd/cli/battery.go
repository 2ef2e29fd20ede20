package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"campus-energy/internal/config"
	"campus-energy/internal/model"
	"campus-energy/internal/optimize"
)

var (
	batBuilding   string
	batPriceBldg  string
	batFrom       string
	batTo         string
	batFile       string
	batStrategy   string
	batPerDay     bool
	batSOCSteps   int
	batPowerSteps int
	batOut        string
)

var batteryCmd = &cobra.Command{
	Use:   "battery",
	Short: "Plan and simulate battery dispatch against stored prices",
	Long: `battery loads net load and price history, computes a cost-minimizing
dispatch plan, replays it through the simulator, and reports the saving
against the no-battery baseline. --out writes the per-interval ledger
as CSV.`,
	RunE: runBattery,
}

func init() {
	batteryCmd.Flags().StringVar(&batBuilding, "building", "", "building id (required)")
	batteryCmd.Flags().StringVar(&batPriceBldg, "price-building", "campus", "building id holding the price signal")
	batteryCmd.Flags().StringVar(&batFrom, "from", "", "range start, RFC3339 (required)")
	batteryCmd.Flags().StringVar(&batTo, "to", "", "range end, RFC3339 (required)")
	batteryCmd.Flags().StringVar(&batFile, "battery", "", "battery YAML file (overrides config)")
	batteryCmd.Flags().StringVar(&batStrategy, "strategy", "", "dispatch strategy: plan|threshold|window (default from config)")
	batteryCmd.Flags().BoolVar(&batPerDay, "per-day", false, "optimize each day independently")
	batteryCmd.Flags().IntVar(&batSOCSteps, "soc-steps", 0, "SOC grid resolution (default 200)")
	batteryCmd.Flags().IntVar(&batPowerSteps, "power-steps", 0, "power grid resolution per direction (default 10)")
	batteryCmd.Flags().StringVar(&batOut, "out", "", "optional ledger CSV output path")
	_ = batteryCmd.MarkFlagRequired("building")
	_ = batteryCmd.MarkFlagRequired("from")
	_ = batteryCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(batteryCmd)
}

func runBattery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	from, err := time.Parse(time.RFC3339, batFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, batTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	battCfg := cfg.Battery
	if batFile != "" {
		fileCfg, err := config.LoadBatteryFile(batFile)
		if err != nil {
			return err
		}
		battCfg = config.MergeBattery(battCfg, fileCfg)
	}

	opt, err := seriesOptions(cfg)
	if err != nil {
		return err
	}
	intervals, err := st.LoadIntervals(context.Background(), batBuilding, batPriceBldg, from, to, opt)
	if err != nil {
		return err
	}

	name := batStrategy
	if name == "" {
		name = cfg.Strategy.Name
	}
	strat, err := buildDispatchStrategy(name, cfg.Strategy.Params, battCfg, intervals, optimize.PlanParams{
		SOCSteps:   batSOCSteps,
		PowerSteps: batPowerSteps,
		PerDay:     batPerDay,
	})
	if err != nil {
		return err
	}
	batt, err := model.NewBattery(battCfg.ToModelParams(), battCfg.InitialSOC)
	if err != nil {
		return err
	}
	result, err := optimize.New().Run(intervals, batt, strat)
	if err != nil {
		return err
	}

	if batOut != "" {
		if err := optimize.WriteLedgerCSV(batOut, result.Ledger); err != nil {
			return err
		}
		fmt.Printf("Wrote %d ledger rows to %s\n", len(result.Ledger), batOut)
	}

	fmt.Printf("Strategy:      %s\n", result.Strategy)
	fmt.Printf("Intervals:     %d\n", len(result.Ledger))
	fmt.Printf("Baseline cost: $%.2f\n", result.BaselineCost)
	fmt.Printf("Total cost:    $%.2f\n", result.TotalCost)
	fmt.Printf("Saving:        $%.2f\n", result.Saving)
	fmt.Printf("Final SOC:     %.3f\n", result.FinalSOC)
	return nil
}

func buildDispatchStrategy(name string, params map[string]any, battCfg config.BatteryConfig, intervals []optimize.Interval, planCfg optimize.PlanParams) (optimize.Strategy, error) {
	switch name {
	case "", "plan":
		plan, err := optimize.PlanDispatch(intervals, battCfg.ToModelParams(), battCfg.InitialSOC, planCfg)
		if err != nil {
			return nil, fmt.Errorf("planning dispatch: %w", err)
		}
		return &optimize.PlanStrategy{Plan: plan}, nil
	case "threshold":
		return &optimize.ThresholdStrategy{
			ChargeBelow:      numParam(params, "charge_below", 0),
			DischargeAbove:   numParam(params, "discharge_above", 0),
			ChargePowerKW:    numParam(params, "charge_power_kw", battCfg.PowerCapacityKW),
			DischargePowerKW: numParam(params, "discharge_power_kw", battCfg.PowerCapacityKW),
		}, nil
	case "window":
		dischargeStart := strParam(params, "discharge_start", "17:00")
		return optimize.NewWindowStrategy(optimize.WindowParams{
			ChargeStart:      strParam(params, "charge_start", "10:00"),
			ChargeEnd:        strParam(params, "charge_end", dischargeStart),
			DischargeStart:   dischargeStart,
			DischargeEnd:     strParam(params, "discharge_end", dischargeStart),
			ChargePowerKW:    numParam(params, "charge_power_kw", battCfg.PowerCapacityKW),
			DischargePowerKW: numParam(params, "discharge_power_kw", battCfg.PowerCapacityKW),
		})
	default:
		return nil, fmt.Errorf("unsupported strategy %q", name)
	}
}

func numParam(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

func strParam(m map[string]any, key, def string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}

func planAndSimulate(intervals []optimize.Interval, battCfg config.BatteryConfig, planCfg optimize.PlanParams) (*optimize.Result, error) {
	params := battCfg.ToModelParams()
	plan, err := optimize.PlanDispatch(intervals, params, battCfg.InitialSOC, planCfg)
	if err != nil {
		return nil, fmt.Errorf("planning dispatch: %w", err)
	}
	batt, err := model.NewBattery(params, battCfg.InitialSOC)
	if err != nil {
		return nil, err
	}
	return optimize.New().Run(intervals, batt, &optimize.PlanStrategy{Plan: plan})
}
