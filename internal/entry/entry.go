package entry

import (
	"time"
)

// Run represents one benchmark or replay session stored in the database.
type Run struct {
	ID        string
	Kind      RunKind
	StartedAt time.Time
	EndedAt   time.Time // zero while the run is in progress
	GoVersion string
	Host      string
	Note      string
	Results   int64 // number of stored results, filled by readers
}

// RunKind distinguishes what produced a run.
type RunKind uint8

const (
	RunBench  RunKind = 0
	RunReplay RunKind = 1
	RunStress RunKind = 2
)

func (k RunKind) String() string {
	switch k {
	case RunReplay:
		return "replay"
	case RunStress:
		return "stress"
	default:
		return "bench"
	}
}

// Duration returns how long the run took, or zero if it has not finished.
func (r Run) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Result holds the measurement of one suite against one implementation.
type Result struct {
	RunID      string
	Suite      string
	Impl       string
	Calls      int64 // calls per iteration
	Iterations int64
	Elapsed    time.Duration
	Digest     uint64
}

// Ops returns the total number of calls made.
func (r Result) Ops() int64 {
	return r.Calls * r.Iterations
}

// NsPerOp returns the mean time per call.
func (r Result) NsPerOp() float64 {
	ops := r.Ops()
	if ops == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(ops)
}

// OpsPerSec returns calls per second.
func (r Result) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops()) / r.Elapsed.Seconds()
}

// Mismatch represents a call on which an implementation disagreed with the
// reference during a replay.
type Mismatch struct {
	RunID string
	Suite string
	Line  int
	Call  string
	Path  string
	Base  string
	Got   string
	Want  string
}
