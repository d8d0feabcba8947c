package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own in-memory database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, InitSchema(database))
	require.NoError(t, ApplyWritePragmas(database))
	return database
}

func TestRecorderWritesResultsAndMismatches(t *testing.T) {
	database := openTestDB(t)

	run, err := BeginRun(database, entry.RunReplay, "nightly")
	require.NoError(t, err)

	resultCh := make(chan entry.Result, 4)
	mismatchCh := make(chan entry.Mismatch, 4)
	rec := NewRecorder(database, run.ID, resultCh, mismatchCh, 2, time.Hour, nil)

	done := make(chan error, 1)
	go func() {
		done <- rec.Run(context.Background())
	}()

	resultCh <- entry.Result{Suite: "b", Impl: "scanner", Calls: 10, Iterations: 3, Elapsed: time.Microsecond, Digest: 0xfeedface}
	resultCh <- entry.Result{Suite: "a", Impl: "reference", Calls: 10, Iterations: 3, Elapsed: time.Millisecond, Digest: ^uint64(0)}
	resultCh <- entry.Result{Suite: "a", Impl: "scanner", Calls: 10, Iterations: 3, Elapsed: time.Microsecond, Digest: 1}
	mismatchCh <- entry.Mismatch{Suite: "a", Line: 7, Call: "normalizePath", Path: "/x/..", Got: "/x", Want: "/"}
	close(resultCh)
	close(mismatchCh)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("recorder did not finish")
	}
	require.NoError(t, FinishRun(database, run))

	assert.Equal(t, Progress{Results: 3, Mismatches: 1}, rec.Progress())

	results, err := LoadResults(database, run.ID, "suite")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Suite)
	assert.Equal(t, "reference", results[0].Impl)
	assert.Equal(t, ^uint64(0), results[0].Digest)
	assert.Equal(t, time.Millisecond, results[0].Elapsed)
	assert.Equal(t, "b", results[2].Suite)
	assert.Equal(t, uint64(0xfeedface), results[2].Digest)

	bySpeed, err := LoadResults(database, run.ID, "speed")
	require.NoError(t, err)
	assert.Equal(t, "reference", bySpeed[2].Impl)

	mismatches, err := LoadMismatches(database, run.ID, 0)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, 7, mismatches[0].Line)
	assert.Equal(t, "/", mismatches[0].Want)

	got, err := GetRun(database, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.RunReplay, got.Kind)
	assert.Equal(t, "nightly", got.Note)
	assert.Equal(t, int64(3), got.Results)
	assert.False(t, got.EndedAt.IsZero())
}

func TestRecorderFlushesOnCancel(t *testing.T) {
	database := openTestDB(t)
	run, err := BeginRun(database, entry.RunBench, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan entry.Result, 1)
	rec := NewRecorder(database, run.ID, resultCh, nil, 100, time.Hour, nil)

	done := make(chan error, 1)
	go func() {
		done <- rec.Run(ctx)
	}()

	resultCh <- entry.Result{Suite: "s", Impl: "scanner", Calls: 1, Iterations: 1}
	require.Eventually(t, func() bool { return rec.Progress().Results == 1 }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	results, err := LoadResults(database, run.ID, "")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGetRunByPrefix(t *testing.T) {
	database := openTestDB(t)

	_, err := database.Exec(`INSERT INTO runs (id, kind, started_at, go_version, host) VALUES
		('abc-1', 0, 1, 'go', 'h'), ('abd-2', 0, 2, 'go', 'h'), ('x_y', 1, 3, 'go', 'h')`)
	require.NoError(t, err)

	r, err := GetRun(database, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-1", r.ID)

	_, err = GetRun(database, "ab")
	assert.ErrorIs(t, err, ErrAmbiguousRun)

	_, err = GetRun(database, "zzz")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = GetRun(database, "x%")
	assert.True(t, errors.Is(err, ErrRunNotFound), "LIKE wildcards must be escaped")

	latest, err := LatestRun(database, entry.RunBench)
	require.NoError(t, err)
	assert.Equal(t, "abd-2", latest.ID)

	_, err = LatestRun(database, entry.RunStress)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListAndPruneRuns(t *testing.T) {
	database := openTestDB(t)

	for i := 0; i < 4; i++ {
		run, err := BeginRun(database, entry.RunBench, "")
		require.NoError(t, err)
		_, err = database.Exec(`UPDATE runs SET started_at = ? WHERE id = ?`, int64(i+1), run.ID)
		require.NoError(t, err)
		_, err = database.Exec(insertResultSQL, run.ID, "s", "scanner", 1, 1, 1, formatDigest(0))
		require.NoError(t, err)
	}

	runs, err := ListRuns(database, 0)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.True(t, runs[0].StartedAt.After(runs[3].StartedAt))

	limited, err := ListRuns(database, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	removed, err := PruneRuns(database, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	runs, err = ListRuns(database, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, runs[0].ID, limited[0].ID)

	var orphans int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id NOT IN (SELECT id FROM runs)`).Scan(&orphans))
	assert.Zero(t, orphans)

	removed, err = PruneRuns(database, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestFinishRunUnknown(t *testing.T) {
	database := openTestDB(t)
	err := FinishRun(database, &entry.Run{ID: "missing"})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDigestFormatting(t *testing.T) {
	assert.Equal(t, "00000000deadbeef", formatDigest(0xdeadbeef))
	assert.Equal(t, "0000000000000000", formatDigest(0))

	for _, d := range []uint64{0, 1, 0xdeadbeef, ^uint64(0)} {
		s := formatDigest(d)
		assert.Len(t, s, 16)
		got, err := parseDigest(s)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}
