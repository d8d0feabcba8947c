package bench

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/michaelscutari/pathnorm/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func fastOptions() *Options {
	return DefaultOptions().WithMinIterations(3).WithMinTime(0).WithWarmup(0)
}

func TestBuiltinSuites(t *testing.T) {
	suites := Builtin()
	require.Len(t, suites, 6)

	assert.Equal(t, "getNormalizedAbsolutePath - non-normalized inputs", suites[0].Name)
	assert.Equal(t, "normalizePath - non-normalized inputs", suites[1].Name)
	assert.Equal(t, "normalizePath - normalized inputs (long)", suites[5].Name)

	for _, s := range suites {
		require.NotEmpty(t, s.Calls, s.Name)
		for _, c := range s.Calls {
			if c.Kind == scenario.KindNormalize {
				assert.Empty(t, c.Base, "%s: normalizePath takes no base", s.Name)
			}
		}
	}
	assert.Equal(t, "b/", suites[0].Calls[16].Base)
}

func TestBuiltinSuitesAgreeWithReference(t *testing.T) {
	for _, s := range Builtin() {
		mismatches, err := scenario.Verify(context.Background(), s.Calls, scenario.Scanner, scenario.Reference, 0)
		require.NoError(t, err)
		assert.Empty(t, mismatches, s.Name)
	}
}

func TestMeasure(t *testing.T) {
	suite := Builtin()[1]
	res, err := Measure(context.Background(), suite, scenario.Scanner, fastOptions())
	require.NoError(t, err)

	assert.Equal(t, suite.Name, res.Suite)
	assert.Equal(t, "scanner", res.Impl)
	assert.Equal(t, int64(len(suite.Calls)), res.Calls)
	assert.Equal(t, int64(3), res.Iterations)
	assert.Positive(t, res.Elapsed)
	assert.Equal(t, scenario.Digest(suite.Calls, scenario.Reference), res.Digest)
}

func TestMeasureHonoursMinTime(t *testing.T) {
	opts := fastOptions().WithMinIterations(1).WithMinTime(20 * time.Millisecond)
	res, err := Measure(context.Background(), Builtin()[2], scenario.Scanner, opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Elapsed, 20*time.Millisecond)
	assert.Greater(t, res.Iterations, int64(1))
}

func TestMeasureEmptySuite(t *testing.T) {
	res, err := Measure(context.Background(), scenario.Suite{Name: "empty"}, scenario.Scanner, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Iterations)
}

func TestMeasureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Measure(ctx, Builtin()[0], scenario.Scanner, fastOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAllAndCompare(t *testing.T) {
	opts := fastOptions()
	require.NoError(t, opts.AddExcludePattern(`\(long\)$`))

	var reported []entry.Result
	results, err := RunAll(context.Background(), Builtin(), []scenario.Impl{scenario.Reference, scenario.Scanner}, opts,
		func(r entry.Result) error {
			reported = append(reported, r)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, results, 8)
	assert.Equal(t, results, reported)
	for _, r := range results {
		assert.False(t, strings.HasSuffix(r.Suite, "(long)"), r.Suite)
	}

	comparisons := Compare(results, "reference", "scanner")
	require.Len(t, comparisons, 4)
	for _, c := range comparisons {
		assert.True(t, c.DigestsMatch(), c.Suite)
		assert.Positive(t, c.Speedup(), c.Suite)
	}
	assert.Equal(t, results[0].Suite, comparisons[0].Suite)
}

func TestRunAllStopsOnReportError(t *testing.T) {
	stop := errors.New("stop")
	results, err := RunAll(context.Background(), Builtin(), []scenario.Impl{scenario.Scanner}, fastOptions(),
		func(entry.Result) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Len(t, results, 1)
}

func TestCompareSkipsUnpaired(t *testing.T) {
	results := []entry.Result{
		{Suite: "a", Impl: "reference", Calls: 1, Iterations: 1, Elapsed: 2},
		{Suite: "b", Impl: "scanner", Calls: 1, Iterations: 1, Elapsed: 1},
		{Suite: "a", Impl: "scanner", Calls: 1, Iterations: 1, Elapsed: 1},
		{Suite: "a", Impl: "other", Calls: 1, Iterations: 1, Elapsed: 1},
	}
	comparisons := Compare(results, "reference", "scanner")
	require.Len(t, comparisons, 1)
	assert.Equal(t, "a", comparisons[0].Suite)
	assert.InDelta(t, 2.0, comparisons[0].Speedup(), 1e-9)
}

func TestStress(t *testing.T) {
	defer goleak.VerifyNone(t)

	calls := Builtin()[0].Calls
	oracle := scenario.Reference
	stats, err := Stress(context.Background(), calls, StressOptions{
		Workers:  4,
		Duration: 30 * time.Millisecond,
		Impl:     scenario.Scanner,
		Oracle:   &oracle,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Workers)
	assert.Positive(t, stats.Ops)
	assert.Zero(t, stats.Ops%int64(len(calls)))
	assert.Zero(t, stats.Mismatches)
	assert.Positive(t, stats.OpsPerSec())
	assert.Positive(t, stats.AvgLatency())
}

func TestStressCountsMismatches(t *testing.T) {
	defer goleak.VerifyNone(t)

	identity := scenario.Impl{
		Name:              "identity",
		Normalize:         func(p string) string { return p },
		NormalizeAbsolute: func(p, _ string) string { return p },
	}
	oracle := scenario.Reference
	stats, err := Stress(context.Background(), Builtin()[1].Calls, StressOptions{
		Workers:  2,
		Duration: 10 * time.Millisecond,
		Impl:     identity,
		Oracle:   &oracle,
	})
	require.NoError(t, err)
	assert.Positive(t, stats.Mismatches)
}

func TestStressCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := Stress(ctx, Builtin()[2].Calls, StressOptions{Workers: 2, Impl: scenario.Scanner})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Stress(context.Background(), nil, StressOptions{Impl: scenario.Scanner})
	assert.Error(t, err)
}
