package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/store"
)

// signalContext returns a context cancelled on the first interrupt. A second
// interrupt exits immediately.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// sink forwards results to the recorder when a run is being recorded and
// drops them otherwise.
type sink struct {
	results    chan<- entry.Result
	mismatches chan<- entry.Mismatch
}

func (s sink) result(r entry.Result) {
	if s.results != nil {
		s.results <- r
	}
}

func (s sink) mismatch(m entry.Mismatch) {
	if s.mismatches != nil {
		s.mismatches <- m
	}
}

// record runs fn, storing its output in the results database when enabled.
func record(ctx context.Context, enabled bool, dbPath string, kind entry.RunKind, note string, fn func(context.Context, sink) error) (*entry.Run, error) {
	if !enabled {
		return nil, fn(ctx, sink{})
	}

	mgr := store.NewManager(dbPath, cfg.Retention)
	mgr.SetLogger(logger)
	return mgr.Record(ctx, kind, note, func(ctx context.Context, results chan<- entry.Result, mismatches chan<- entry.Mismatch) error {
		return fn(ctx, sink{results: results, mismatches: mismatches})
	})
}

func resolveDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.DBPath
}
