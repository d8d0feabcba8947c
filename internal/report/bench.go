package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/pathnorm/internal/bench"
	"github.com/michaelscutari/pathnorm/internal/entry"
)

// ResultsTable lists measurements one row per suite and implementation.
func ResultsTable(results []entry.Result) *Table {
	t := NewTable("SUITE", "IMPL", "ITER", "CALLS", "NS/OP", "OPS/SEC", "DIGEST").AlignRight(2, 3, 4, 5)
	for _, r := range results {
		t.AddRow(
			r.Suite,
			r.Impl,
			humanize.Comma(r.Iterations),
			humanize.Comma(r.Ops()),
			FormatNs(r.NsPerOp()),
			humanize.SIWithDigits(r.OpsPerSec(), 2, ""),
			fmt.Sprintf("%016x", r.Digest),
		)
	}
	return t
}

// ComparisonTable shows how a candidate fares against a baseline per suite.
func ComparisonTable(comparisons []bench.Comparison) *Table {
	t := NewTable("SUITE", "BASELINE", "CANDIDATE", "SPEEDUP", "OUTPUT").AlignRight(1, 2, 3)
	for _, c := range comparisons {
		speedup := fmt.Sprintf("%.2fx", c.Speedup())
		switch s := c.Speedup(); {
		case s >= 1.05:
			speedup = StyleSuccess.Render(speedup)
		case s > 0 && s <= 0.95:
			speedup = StyleError.Render(speedup)
		}
		output := StyleSuccess.Render("same")
		if !c.DigestsMatch() {
			output = StyleError.Render("differs")
		}
		t.AddRow(
			c.Suite,
			FormatNs(c.Baseline.NsPerOp()),
			FormatNs(c.Candidate.NsPerOp()),
			speedup,
			output,
		)
	}
	return t
}

// RunsTable lists stored runs relative to now.
func RunsTable(runs []entry.Run, now time.Time) *Table {
	t := NewTable("ID", "KIND", "STARTED", "DURATION", "RESULTS", "NOTE").AlignRight(4)
	for _, r := range runs {
		duration := StyleMuted.Render("running")
		if !r.EndedAt.IsZero() {
			duration = r.Duration().Round(time.Millisecond).String()
		}
		t.AddRow(
			ShortID(r.ID),
			r.Kind.String(),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			duration,
			humanize.Comma(r.Results),
			r.Note,
		)
	}
	return t
}

// WriteRun prints a run header.
func WriteRun(w io.Writer, r entry.Run) {
	fmt.Fprintf(w, "%s %s\n", StyleHeader.Render("Run"), r.ID)
	fmt.Fprintf(w, "Kind:     %s\n", r.Kind)
	fmt.Fprintf(w, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	if !r.EndedAt.IsZero() {
		fmt.Fprintf(w, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Go:       %s on %s\n", r.GoVersion, r.Host)
	if r.Note != "" {
		fmt.Fprintf(w, "Note:     %s\n", r.Note)
	}
}

// WriteStress prints a stress summary.
func WriteStress(w io.Writer, impl string, calls int, s bench.StressStats) {
	fmt.Fprintf(w, "impl=%s calls=%d workers=%d\n", impl, calls, s.Workers)
	fmt.Fprintf(w, "ops:        %s in %s\n", humanize.Comma(s.Ops), s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "throughput: %s ops/sec\n", humanize.SIWithDigits(s.OpsPerSec(), 2, ""))
	fmt.Fprintf(w, "latency:    %s avg per call\n", s.AvgLatency())
	if s.Mismatches > 0 {
		fmt.Fprintf(w, "mismatches: %s\n", StyleError.Render(humanize.Comma(s.Mismatches)))
	}
}

// FormatNs formats a per-call duration in nanoseconds.
func FormatNs(ns float64) string {
	switch {
	case ns >= 1e6:
		return fmt.Sprintf("%.2fms", ns/1e6)
	case ns >= 1e3:
		return fmt.Sprintf("%.2fµs", ns/1e3)
	default:
		return fmt.Sprintf("%.1fns", ns)
	}
}

// ShortID abbreviates a run ID for tables.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
