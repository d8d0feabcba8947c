package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/michaelscutari/pathnorm/internal/bench"
	"github.com/michaelscutari/pathnorm/internal/db"
	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/michaelscutari/pathnorm/internal/scenario"
	"github.com/michaelscutari/pathnorm/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored runs or show one in detail",
	Long: `History lists the runs kept in the results database, newest first.
Given a run ID (or a unique prefix of one) it prints that run's results,
the per-suite comparison and any recorded mismatches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyDB         string
	historyLimit      int
	historySort       string
	historyMismatches int
)

func init() {
	historyCmd.Flags().StringVarP(&historyDB, "db", "d", "", "Results database path (default from config)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVarP(&historySort, "sort", "s", "suite", "Sort results by: suite, impl, speed")
	historyCmd.Flags().IntVar(&historyMismatches, "mismatches", 20, "Maximum mismatches to print")
}

func runHistory(cmd *cobra.Command, args []string) error {
	mgr := store.NewManager(resolveDBPath(historyDB), cfg.Retention)
	database, err := mgr.OpenReader()
	if err != nil {
		return err
	}
	defer database.Close()

	if len(args) == 0 {
		runs, err := db.ListRuns(database, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		report.RunsTable(runs, time.Now()).WriteTo(os.Stdout)
		return nil
	}

	run, err := db.GetRun(database, args[0])
	if err != nil {
		if errors.Is(err, db.ErrAmbiguousRun) {
			return fmt.Errorf("%w (use more characters)", err)
		}
		return err
	}
	report.WriteRun(os.Stdout, *run)

	results, err := db.LoadResults(database, run.ID, historySort)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	if len(results) > 0 {
		fmt.Println()
		report.ResultsTable(results).WriteTo(os.Stdout)
	}

	if comparisons := bench.Compare(results, scenario.Reference.Name, scenario.Scanner.Name); len(comparisons) > 0 {
		fmt.Println()
		report.ComparisonTable(comparisons).WriteTo(os.Stdout)
	}

	mismatches, err := db.LoadMismatches(database, run.ID, historyMismatches)
	if err != nil {
		return fmt.Errorf("failed to load mismatches: %w", err)
	}
	if len(mismatches) > 0 {
		fmt.Printf("\n%s\n", report.StyleHeader.Render("Mismatches"))
		for _, m := range mismatches {
			report.WriteMismatch(os.Stdout, m)
		}
	}
	return nil
}
