package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/pathnorm/internal/db"
	"github.com/michaelscutari/pathnorm/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRecordsRunsAndAppliesRetention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.db")
	mgr := NewManager(path, 2)
	mgr.SetBatching(1, 10*time.Millisecond)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := mgr.Record(context.Background(), entry.RunBench, "", func(ctx context.Context, results chan<- entry.Result, _ chan<- entry.Mismatch) error {
			results <- entry.Result{Suite: "s", Impl: "scanner", Calls: 5, Iterations: int64(i + 1), Elapsed: time.Millisecond}
			results <- entry.Result{Suite: "s", Impl: "reference", Calls: 5, Iterations: int64(i + 1), Elapsed: time.Millisecond}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), run.Results)
		assert.False(t, run.EndedAt.IsZero())
		ids = append(ids, run.ID)
		time.Sleep(2 * time.Millisecond)
	}

	database, err := mgr.OpenReader()
	require.NoError(t, err)
	defer database.Close()

	runs, err := db.ListRuns(database, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	_, err = db.GetRun(database, ids[0])
	assert.ErrorIs(t, err, db.ErrRunNotFound)

	results, err := db.LoadResults(database, ids[2], "impl")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(3), results[0].Iterations)
}

func TestManagerRecordKeepsPartialRunOnError(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "results.db"), 0)
	boom := errors.New("boom")

	run, err := mgr.Record(context.Background(), entry.RunReplay, "partial", func(ctx context.Context, _ chan<- entry.Result, mismatches chan<- entry.Mismatch) error {
		mismatches <- entry.Mismatch{Suite: "s", Line: 1, Call: "normalizePath", Path: "a", Got: "b", Want: "a"}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, run)

	database, err := mgr.OpenReader()
	require.NoError(t, err)
	defer database.Close()

	mismatches, err := db.LoadMismatches(database, run.ID, 10)
	require.NoError(t, err)
	assert.Len(t, mismatches, 1)
}

func TestManagerRecordReturnsWhenRecorderFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	mgr := NewManager(path, 0)
	mgr.SetBatching(4, time.Minute)

	var fnCtxErr error
	done := make(chan error, 1)
	go func() {
		_, err := mgr.Record(context.Background(), entry.RunBench, "", func(ctx context.Context, results chan<- entry.Result, _ chan<- entry.Mismatch) error {
			other, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
			if err != nil {
				return err
			}
			defer other.Close()
			if _, err := other.Exec(`DROP TABLE results`); err != nil {
				return err
			}

			for i := 0; i < 100; i++ {
				results <- entry.Result{Suite: "s", Impl: "scanner", Calls: 1, Iterations: int64(i + 1)}
			}
			fnCtxErr = ctx.Err()
			return nil
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to record run")
		assert.ErrorIs(t, fnCtxErr, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Record did not return after the recorder failed")
	}
}

func TestManagerLocksWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	holder := NewManager(path, 0)
	require.NoError(t, holder.acquireLock())
	defer holder.releaseLock()

	_, err := NewManager(path, 0).Record(context.Background(), entry.RunBench, "", func(context.Context, chan<- entry.Result, chan<- entry.Mismatch) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestOpenReaderMissingDatabase(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "none.db"), 0).OpenReader()
	assert.Error(t, err)
}
