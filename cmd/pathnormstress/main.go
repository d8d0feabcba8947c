package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/michaelscutari/pathnorm/internal/bench"
	"github.com/michaelscutari/pathnorm/internal/config"
	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/logging"
	"github.com/michaelscutari/pathnorm/internal/report"
	"github.com/michaelscutari/pathnorm/internal/scenario"
	"github.com/michaelscutari/pathnorm/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("PATHNORM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.SuitesDir, "Directory of JSONL call logs (empty = built-in inputs)")
	pattern := flag.String("pattern", cfg.SuitePattern, "Glob selecting call logs in -dir")
	builtin := flag.Bool("builtin", false, "Use the built-in input sets instead of call logs")
	workers := flag.Int("workers", cfg.Stress.Workers, "Concurrent workers")
	duration := flag.Duration("duration", cfg.Stress.Duration, "How long to run (0 = until interrupted)")
	implName := flag.String("impl", scenario.Scanner.Name, "Implementation: scanner or reference")
	verify := flag.Bool("verify", false, "Check every output against the other implementation")
	limit := flag.Int("limit", 0, "Max calls to sample (0 = all)")
	shuffle := flag.Bool("shuffle", false, "Shuffle sampled calls")
	sampleSeed := flag.Int64("seed", 0, "Shuffle seed (0 = time-based)")
	record := flag.Bool("record", false, "Store the run in the results database")
	dbPath := flag.String("db", cfg.DBPath, "Results database path")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	logger := logging.Setup(os.Stderr, logging.Options{Verbose: *verbose, Prefix: "pathnormstress"})
	if !cfg.Output.Color {
		report.SetNoColor(true)
	}

	impl, ok := scenario.LookupImpl(*implName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown implementation %q\n", *implName)
		os.Exit(2)
	}
	opts := bench.StressOptions{
		Workers:  *workers,
		Duration: *duration,
		Impl:     impl,
	}
	if *verify {
		oracle := scenario.Reference
		if impl.Name == scenario.Reference.Name {
			oracle = scenario.Scanner
		}
		opts.Oracle = &oracle
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadStart := time.Now()
	var calls []scenario.Call
	if *builtin || *dir == "" {
		for _, s := range bench.Builtin() {
			calls = append(calls, s.Calls...)
		}
	} else {
		suites, err := scenario.LoadSuites(ctx, *dir, *pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load error: %v\n", err)
			os.Exit(1)
		}
		for _, s := range suites {
			calls = append(calls, s.Calls...)
		}
	}
	loadDur := time.Since(loadStart)

	if *limit > 0 && *limit < len(calls) {
		calls = calls[:*limit]
	}
	if *shuffle && len(calls) > 1 {
		seed := *sampleSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(calls), func(i, j int) { calls[i], calls[j] = calls[j], calls[i] })
	}
	logger.Debug("calls loaded", "count", len(calls), "took", loadDur)

	stats, err := bench.Stress(ctx, calls, opts)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "stress error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("load:       %v\n", loadDur)
	report.WriteStress(os.Stdout, impl.Name, len(calls), stats)

	if *record {
		mgr := store.NewManager(*dbPath, cfg.Retention)
		mgr.SetLogger(logger)
		note := fmt.Sprintf("workers=%d duration=%s", stats.Workers, stats.Elapsed.Round(time.Millisecond))
		run, err := mgr.Record(context.Background(), entry.RunStress, note, func(ctx context.Context, results chan<- entry.Result, _ chan<- entry.Mismatch) error {
			results <- entry.Result{
				Suite:      "stress",
				Impl:       impl.Name,
				Calls:      int64(len(calls)),
				Iterations: max(1, stats.Ops/int64(len(calls))),
				Elapsed:    stats.Elapsed,
				Digest:     scenario.Digest(calls, impl),
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "record error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("recorded:   %s\n", report.ShortID(run.ID))
	}

	if stats.Mismatches > 0 {
		os.Exit(1)
	}
}
