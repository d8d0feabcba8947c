package bench

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/michaelscutari/pathnorm/internal/scenario"
	"golang.org/x/sync/errgroup"
)

// StressOptions configures a concurrent stress run.
type StressOptions struct {
	Workers  int
	Duration time.Duration
	Impl     scenario.Impl
	// Oracle, when set, is used to precompute expected outputs that every
	// worker checks its results against.
	Oracle *scenario.Impl
}

// StressStats summarizes a stress run.
type StressStats struct {
	Workers    int
	Ops        int64
	Mismatches int64
	Busy       time.Duration // summed across workers
	Elapsed    time.Duration
}

// OpsPerSec returns aggregate throughput.
func (s StressStats) OpsPerSec() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Ops) / s.Elapsed.Seconds()
}

// AvgLatency returns the mean time a worker spent per call.
func (s StressStats) AvgLatency() time.Duration {
	if s.Ops == 0 {
		return 0
	}
	return s.Busy / time.Duration(s.Ops)
}

// Stress calls impl from many goroutines at once until the duration elapses
// or ctx is cancelled. A zero duration runs until ctx is cancelled. Each
// worker starts at a different offset into calls.
func Stress(ctx context.Context, calls []scenario.Call, opts StressOptions) (StressStats, error) {
	if len(calls) == 0 {
		return StressStats{}, errors.New("no calls to replay")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	var want []string
	if opts.Oracle != nil {
		want = make([]string, len(calls))
		for i, c := range calls {
			want[i] = c.Apply(*opts.Oracle)
		}
	}

	var ops, mismatches, busy int64

	runCtx := ctx
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for w := 0; w < opts.Workers; w++ {
		offset := w * len(calls) / opts.Workers
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				default:
				}

				t0 := time.Now()
				var bad int64
				for i := range calls {
					n := (offset + i) % len(calls)
					got := calls[n].Apply(opts.Impl)
					if want != nil && got != want[n] {
						bad++
					}
				}
				atomic.AddInt64(&busy, int64(time.Since(t0)))
				atomic.AddInt64(&ops, int64(len(calls)))
				if bad > 0 {
					atomic.AddInt64(&mismatches, bad)
				}
			}
		})
	}
	err := g.Wait()
	stats := StressStats{
		Workers:    opts.Workers,
		Ops:        atomic.LoadInt64(&ops),
		Mismatches: atomic.LoadInt64(&mismatches),
		Busy:       time.Duration(atomic.LoadInt64(&busy)),
		Elapsed:    time.Since(start),
	}
	if err != nil {
		return stats, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stats, fmt.Errorf("stress interrupted: %w", ctxErr)
	}
	return stats, nil
}
