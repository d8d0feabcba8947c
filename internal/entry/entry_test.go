package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResultRates(t *testing.T) {
	r := Result{Calls: 100, Iterations: 10, Elapsed: time.Millisecond}

	assert.Equal(t, int64(1000), r.Ops())
	assert.InDelta(t, 1000.0, r.NsPerOp(), 1e-9)
	assert.InDelta(t, 1e6, r.OpsPerSec(), 1e-6)

	var empty Result
	assert.Zero(t, empty.NsPerOp())
	assert.Zero(t, empty.OpsPerSec())
}

func TestRunDuration(t *testing.T) {
	start := time.Unix(100, 0)
	r := Run{StartedAt: start}
	assert.Zero(t, r.Duration())

	r.EndedAt = start.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, r.Duration())
}

func TestRunKindString(t *testing.T) {
	assert.Equal(t, "bench", RunBench.String())
	assert.Equal(t, "replay", RunReplay.String())
	assert.Equal(t, "stress", RunStress.String())
}
