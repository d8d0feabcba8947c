package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/michaelscutari/pathnorm/internal/scenario"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [suites-dir]",
	Short: "Replay recorded call logs",
	Long: `Replay reads JSONL call logs and runs every call against an implementation,
printing a digest of the outputs per log. With --verify each call is also
run against the other implementation and any disagreement is reported.

Each log line looks like:
  {"call":"normalizePath","args":["a/../b"]}
  {"call":"getNormalizedAbsolutePath","args":["../c","/base"]}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

var (
	replayPattern string
	replayImpl    string
	replayVerify  bool
	replayShow    int
	replayRecord  bool
	replayDB      string
	replayNote    string
)

func init() {
	replayCmd.Flags().StringVarP(&replayPattern, "pattern", "p", "", "Glob selecting logs in the suites directory (default from config)")
	replayCmd.Flags().StringVar(&replayImpl, "impl", scenario.Scanner.Name, "Implementation to replay: scanner or reference")
	replayCmd.Flags().BoolVar(&replayVerify, "verify", false, "Check every call against the other implementation")
	replayCmd.Flags().IntVar(&replayShow, "show", 20, "Maximum mismatches to print per log (0 for all)")
	replayCmd.Flags().BoolVar(&replayRecord, "record", false, "Store the replay in the results database")
	replayCmd.Flags().StringVar(&replayDB, "db", "", "Results database path (default from config)")
	replayCmd.Flags().StringVar(&replayNote, "note", "", "Note stored with the recorded run")
}

func runReplay(cmd *cobra.Command, args []string) error {
	impl, ok := scenario.LookupImpl(replayImpl)
	if !ok {
		return fmt.Errorf("unknown implementation %q", replayImpl)
	}
	oracle := scenario.Reference
	if impl.Name == scenario.Reference.Name {
		oracle = scenario.Scanner
	}

	dir := cfg.SuitesDir
	if len(args) > 0 {
		dir = args[0]
	}
	pattern := replayPattern
	if pattern == "" {
		pattern = cfg.SuitePattern
	}

	ctx, cancel := signalContext()
	defer cancel()

	suites, err := scenario.LoadSuites(ctx, dir, pattern)
	if err != nil {
		return err
	}
	logger.Debug("loaded suites", "count", len(suites), "dir", dir)

	var results []entry.Result
	var total int64
	run, err := record(ctx, replayRecord, resolveDBPath(replayDB), entry.RunReplay, replayNote, func(ctx context.Context, out sink) error {
		for _, suite := range suites {
			start := time.Now()
			digest := scenario.Digest(suite.Calls, impl)
			res := entry.Result{
				Suite:      suite.Name,
				Impl:       impl.Name,
				Calls:      int64(len(suite.Calls)),
				Iterations: 1,
				Elapsed:    time.Since(start),
				Digest:     digest,
			}
			results = append(results, res)
			out.result(res)

			if !replayVerify {
				continue
			}
			mismatches, err := scenario.Verify(ctx, suite.Calls, impl, oracle, 0)
			if err != nil {
				return err
			}
			for i, m := range mismatches {
				rec := m.Record(suite.Name)
				out.mismatch(rec)
				if replayShow <= 0 || i < replayShow {
					report.WriteMismatch(os.Stdout, rec)
				}
			}
			if n := len(mismatches); n > 0 {
				logger.Warn("implementations disagree", "suite", suite.Name, "mismatches", n)
				total += int64(n)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Replay canceled")
			return nil
		}
		return err
	}

	report.ResultsTable(results).WriteTo(os.Stdout)
	if run != nil {
		fmt.Printf("\nRecorded run %s\n", report.ShortID(run.ID))
	}

	if total > 0 {
		return fmt.Errorf("%d calls disagree between %s and %s", total, impl.Name, oracle.Name)
	}
	if replayVerify {
		fmt.Println(report.StyleSuccess.Render(fmt.Sprintf("\nAll calls agree between %s and %s", impl.Name, oracle.Name)))
	}
	return nil
}
