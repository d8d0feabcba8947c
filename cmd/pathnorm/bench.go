package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/michaelscutari/pathnorm/internal/bench"
	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/michaelscutari/pathnorm/internal/scenario"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench [suites-dir]",
	Short: "Benchmark the normalizer against the reference implementation",
	Long: `Bench measures both implementations over the built-in input sets and any
JSONL call logs in the suites directory, then compares them per suite.
Results are stored in the results database unless --no-record is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBench,
}

var (
	benchPattern    string
	benchSkipJSON   bool
	benchSkipBuilt  bool
	benchIterations int
	benchMinTime    string
	benchWarmup     int
	benchExclude    []string
	benchNoRecord   bool
	benchDB         string
	benchNote       string
)

func init() {
	benchCmd.Flags().StringVarP(&benchPattern, "pattern", "p", "", "Glob selecting logs in the suites directory (default from config)")
	benchCmd.Flags().BoolVar(&benchSkipJSON, "skip-json", false, "Only run the built-in input sets")
	benchCmd.Flags().BoolVar(&benchSkipBuilt, "skip-builtin", false, "Only run call logs")
	benchCmd.Flags().IntVarP(&benchIterations, "iterations", "n", 0, "Minimum passes per suite (default from config)")
	benchCmd.Flags().StringVar(&benchMinTime, "min-time", "", "Minimum time per suite, e.g. 500ms (default from config)")
	benchCmd.Flags().IntVar(&benchWarmup, "warmup", -1, "Untimed passes before measuring (default from config)")
	benchCmd.Flags().StringSliceVarP(&benchExclude, "exclude", "e", nil, "Regex of suite names to skip (repeatable)")
	benchCmd.Flags().BoolVar(&benchNoRecord, "no-record", false, "Do not store results")
	benchCmd.Flags().StringVar(&benchDB, "db", "", "Results database path (default from config)")
	benchCmd.Flags().StringVar(&benchNote, "note", "", "Note stored with the run")
}

func benchOptions() (*bench.Options, error) {
	opts := bench.DefaultOptions().
		WithMinIterations(cfg.Bench.Iterations).
		WithMinTime(cfg.Bench.MinTime).
		WithWarmup(cfg.Bench.Warmup)

	if benchIterations > 0 {
		opts.WithMinIterations(benchIterations)
	}
	if benchMinTime != "" {
		d, err := time.ParseDuration(benchMinTime)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-time: %w", err)
		}
		opts.WithMinTime(d)
	}
	if benchWarmup >= 0 {
		opts.WithWarmup(benchWarmup)
	}

	patterns := append([]string{}, cfg.Bench.Exclude...)
	for _, pattern := range append(patterns, benchExclude...) {
		if err := opts.AddExcludePattern(pattern); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return opts, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchSkipJSON && benchSkipBuilt {
		return errors.New("--skip-json and --skip-builtin leave nothing to run")
	}

	opts, err := benchOptions()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var suites []scenario.Suite
	if !benchSkipBuilt {
		suites = append(suites, bench.Builtin()...)
	}
	if !benchSkipJSON {
		dir := cfg.SuitesDir
		if len(args) > 0 {
			dir = args[0]
		}
		pattern := benchPattern
		if pattern == "" {
			pattern = cfg.SuitePattern
		}
		loaded, err := scenario.LoadSuites(ctx, dir, pattern)
		switch {
		case errors.Is(err, scenario.ErrNoSuites) && len(args) == 0 && !benchSkipBuilt:
			logger.Debug("no call logs found", "dir", dir)
		case errors.Is(err, os.ErrNotExist) && len(args) == 0 && !benchSkipBuilt:
			logger.Debug("suites directory missing", "dir", dir)
		case err != nil:
			return err
		}
		suites = append(suites, loaded...)
	}

	impls := []scenario.Impl{scenario.Reference, scenario.Scanner}
	total := 0
	for _, s := range suites {
		if !opts.ShouldExclude(s.Name) {
			total += len(impls)
		}
	}
	if total == 0 {
		return errors.New("every suite is excluded")
	}
	logger.Debug("benchmarking", "suites", total/len(impls), "min_iterations", opts.MinIterations, "min_time", opts.MinTime)

	showProgress := stderrIsTerminal()
	done := 0
	var results []entry.Result
	run, err := record(ctx, !benchNoRecord, resolveDBPath(benchDB), entry.RunBench, benchNote, func(ctx context.Context, out sink) error {
		var err error
		results, err = bench.RunAll(ctx, suites, impls, opts, func(r entry.Result) error {
			done++
			if showProgress {
				fmt.Fprintf(os.Stderr, "\r\033[K[%d/%d] %s (%s)", done, total, r.Suite, r.Impl)
			}
			logger.Debug("measured", "suite", r.Suite, "impl", r.Impl, "ns_per_op", r.NsPerOp())
			out.result(r)
			return nil
		})
		return err
	})
	if showProgress {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Benchmark canceled")
			return nil
		}
		return err
	}

	report.ResultsTable(results).WriteTo(os.Stdout)
	fmt.Println()
	comparisons := bench.Compare(results, scenario.Reference.Name, scenario.Scanner.Name)
	report.ComparisonTable(comparisons).WriteTo(os.Stdout)

	if run != nil {
		fmt.Printf("\nRecorded run %s in %s\n", report.ShortID(run.ID), resolveDBPath(benchDB))
	}

	for _, c := range comparisons {
		if !c.DigestsMatch() {
			return fmt.Errorf("output of %s differs from %s on suite %q", c.Candidate.Impl, c.Baseline.Impl, c.Suite)
		}
	}
	return nil
}
