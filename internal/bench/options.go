package bench

import (
	"regexp"
	"time"
)

// Options configures a benchmark run.
type Options struct {
	// MinIterations is the fewest passes made over each suite.
	MinIterations int

	// MinTime is the least wall time spent on each suite and implementation.
	MinTime time.Duration

	// Warmup is the number of untimed passes made before measuring.
	Warmup int

	// ExcludePatterns are regular expressions for suite names to skip.
	ExcludePatterns []*regexp.Regexp
}

// DefaultOptions returns sensible defaults for benchmarking.
func DefaultOptions() *Options {
	return &Options{
		MinIterations: 10,
		MinTime:       500 * time.Millisecond,
		Warmup:        1,
	}
}

// WithMinIterations sets the minimum number of passes.
func (o *Options) WithMinIterations(n int) *Options {
	o.MinIterations = n
	return o
}

// WithMinTime sets the minimum measured time.
func (o *Options) WithMinTime(d time.Duration) *Options {
	o.MinTime = d
	return o
}

// WithWarmup sets the number of untimed passes.
func (o *Options) WithWarmup(n int) *Options {
	o.Warmup = n
	return o
}

// AddExcludePattern adds a pattern to exclude.
func (o *Options) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	o.ExcludePatterns = append(o.ExcludePatterns, re)
	return nil
}

// ShouldExclude checks if a suite name matches any exclude pattern.
func (o *Options) ShouldExclude(name string) bool {
	for _, re := range o.ExcludePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
