// Package bench measures normalization implementations over call suites.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/scenario"
)

// ReportFunc is called with each result as soon as it is measured.
type ReportFunc func(entry.Result) error

// Measure replays suite against impl until both the minimum iteration count
// and the minimum time are reached.
func Measure(ctx context.Context, suite scenario.Suite, impl scenario.Impl, opts *Options) (entry.Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	res := entry.Result{
		Suite: suite.Name,
		Impl:  impl.Name,
		Calls: int64(len(suite.Calls)),
	}
	if len(suite.Calls) == 0 {
		return res, nil
	}

	for i := 0; i < opts.Warmup; i++ {
		scenario.Run(suite.Calls, impl)
	}

	var iterations int64
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		scenario.Run(suite.Calls, impl)
		iterations++
		if iterations >= int64(opts.MinIterations) && time.Since(start) >= opts.MinTime {
			break
		}
	}
	res.Elapsed = time.Since(start)
	res.Iterations = iterations
	res.Digest = scenario.Digest(suite.Calls, impl)
	return res, nil
}

// RunAll measures every suite against every implementation in order. Suites
// are measured one at a time so timings do not contend for CPU.
func RunAll(ctx context.Context, suites []scenario.Suite, impls []scenario.Impl, opts *Options, report ReportFunc) ([]entry.Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	var results []entry.Result
	for _, suite := range suites {
		if opts.ShouldExclude(suite.Name) {
			continue
		}
		for _, impl := range impls {
			res, err := Measure(ctx, suite, impl, opts)
			if err != nil {
				return results, fmt.Errorf("suite %q (%s): %w", suite.Name, impl.Name, err)
			}
			results = append(results, res)
			if report != nil {
				if err := report(res); err != nil {
					return results, err
				}
			}
		}
	}
	return results, nil
}

// Comparison pairs a baseline and a candidate measurement of one suite.
type Comparison struct {
	Suite     string
	Baseline  entry.Result
	Candidate entry.Result
}

// Speedup returns how many times faster the candidate is per call.
func (c Comparison) Speedup() float64 {
	cand := c.Candidate.NsPerOp()
	if cand == 0 {
		return 0
	}
	return c.Baseline.NsPerOp() / cand
}

// DigestsMatch reports whether both implementations produced the same outputs.
func (c Comparison) DigestsMatch() bool {
	return c.Baseline.Digest == c.Candidate.Digest
}

// Compare pairs results by suite in first-seen order. Suites missing either
// implementation are left out.
func Compare(results []entry.Result, baseline, candidate string) []Comparison {
	index := make(map[string]int)
	var out []Comparison
	seen := make(map[string][2]bool)

	for _, r := range results {
		if r.Impl != baseline && r.Impl != candidate {
			continue
		}
		i, ok := index[r.Suite]
		if !ok {
			i = len(out)
			index[r.Suite] = i
			out = append(out, Comparison{Suite: r.Suite})
		}
		s := seen[r.Suite]
		if r.Impl == baseline {
			out[i].Baseline = r
			s[0] = true
		} else {
			out[i].Candidate = r
			s[1] = true
		}
		seen[r.Suite] = s
	}

	paired := out[:0]
	for _, c := range out {
		if s := seen[c.Suite]; s[0] && s[1] {
			paired = append(paired, c)
		}
	}
	return paired
}
