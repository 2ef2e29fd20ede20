package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"campus-energy/internal/timetable"
)

var (
	ttInstance string
	ttPasses   int
	ttOut      string
)

var timetableCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Assign lectures to rooms and slots, minimizing energy cost",
	Long: `timetable reads a YAML instance of rooms, lectures and per-slot prices,
solves for a feasible assignment that minimizes total energy cost, and
optionally writes the schedule as CSV.`,
	RunE: runTimetable,
}

func init() {
	timetableCmd.Flags().StringVar(&ttInstance, "instance", "", "instance YAML file (required)")
	timetableCmd.Flags().IntVar(&ttPasses, "passes", 0, "local search improvement passes (default 3)")
	timetableCmd.Flags().StringVar(&ttOut, "out", "", "optional schedule CSV output path")
	_ = timetableCmd.MarkFlagRequired("instance")
	rootCmd.AddCommand(timetableCmd)
}

func runTimetable(cmd *cobra.Command, args []string) error {
	in, err := timetable.LoadInstance(ttInstance)
	if err != nil {
		return err
	}

	solver := &timetable.Solver{ImprovementPasses: ttPasses}
	sched, err := solver.Solve(in)
	if err != nil {
		if errors.Is(err, timetable.ErrInfeasible) {
			return fmt.Errorf("no feasible timetable: %w", err)
		}
		return err
	}

	if ttOut != "" {
		if err := timetable.WriteScheduleCSV(ttOut, in, sched); err != nil {
			return err
		}
		fmt.Printf("Wrote %d placements to %s\n", len(sched.Placements), ttOut)
	}

	fmt.Printf("Placed %d lectures, energy cost $%.2f\n", len(sched.Placements), sched.EnergyCost)
	for _, p := range sched.Placements {
		fmt.Printf("  %-12s room %-8s day %d slot %d\n", p.LectureID, p.RoomID, p.Day, p.StartSlot)
	}
	return nil
}
