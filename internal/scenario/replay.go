package scenario

import (
	"context"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/zeebo/xxh3"
)

// sink keeps replayed results observable so the calls are not elided.
var sink string

// Run invokes every call against impl once.
func Run(calls []Call, impl Impl) {
	for i := range calls {
		sink = calls[i].Apply(impl)
	}
}

// Digest replays calls against impl and hashes the outputs in order. Two
// implementations that agree on every call produce the same digest.
func Digest(calls []Call, impl Impl) uint64 {
	h := xxh3.New()
	for i := range calls {
		h.WriteString(calls[i].Apply(impl))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Mismatch is a call on which two implementations disagree.
type Mismatch struct {
	Call Call
	Got  string
	Want string
}

// Record converts the mismatch into a storable row for suite.
func (m Mismatch) Record(suite string) entry.Mismatch {
	return entry.Mismatch{
		Suite: suite,
		Line:  m.Call.Line,
		Call:  m.Call.Kind.String(),
		Path:  m.Call.Path,
		Base:  m.Call.Base,
		Got:   m.Got,
		Want:  m.Want,
	}
}

// Verify replays calls against impl and oracle and returns up to limit
// disagreements. A limit of zero or less returns all of them.
func Verify(ctx context.Context, calls []Call, impl, oracle Impl, limit int) ([]Mismatch, error) {
	var mismatches []Mismatch
	for i, call := range calls {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return mismatches, err
			}
		}
		got := call.Apply(impl)
		want := call.Apply(oracle)
		if got == want {
			continue
		}
		mismatches = append(mismatches, Mismatch{Call: call, Got: got, Want: want})
		if limit > 0 && len(mismatches) >= limit {
			break
		}
	}
	return mismatches, nil
}
