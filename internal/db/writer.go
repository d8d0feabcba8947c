package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/michaelscutari/pathnorm/internal/entry"
)

const insertRunSQL = `INSERT INTO runs (id, kind, started_at, go_version, host, note) VALUES (?, ?, ?, ?, ?, ?)`
const finishRunSQL = `UPDATE runs SET ended_at = ? WHERE id = ?`
const insertResultSQL = `INSERT INTO results (run_id, suite, impl, calls, iterations, elapsed_ns, digest) VALUES (?, ?, ?, ?, ?, ?, ?)`
const insertMismatchSQL = `INSERT INTO mismatches (run_id, suite, line, call, path, base, got, want) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const maxMismatchesSampled = 1000

// BeginRun inserts a new run row and returns it with a fresh ID.
func BeginRun(db *sql.DB, kind entry.RunKind, note string) (*entry.Run, error) {
	host, _ := os.Hostname()
	run := &entry.Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now(),
		GoVersion: runtime.Version(),
		Host:      host,
		Note:      note,
	}

	_, err := db.Exec(insertRunSQL, run.ID, run.Kind, run.StartedAt.UnixNano(), run.GoVersion, run.Host, run.Note)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the end time of a run.
func FinishRun(db *sql.DB, run *entry.Run) error {
	run.EndedAt = time.Now()
	res, err := db.Exec(finishRunSQL, run.EndedAt.UnixNano(), run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// Recorder batches results and mismatches for one run and writes them to the
// database.
type Recorder struct {
	db            *sql.DB
	runID         string
	resultCh      <-chan entry.Result
	mismatchCh    <-chan entry.Mismatch
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger

	resultBatch    []entry.Result
	mismatchBatch  []entry.Mismatch
	mismatchCapped bool

	resultCount   int64
	mismatchCount int64

	resultStmt   *sql.Stmt
	mismatchStmt *sql.Stmt
}

// Progress holds counts recorded so far.
type Progress struct {
	Results    int64
	Mismatches int64
}

// NewRecorder creates a recorder for the given run. Either channel may be nil.
func NewRecorder(db *sql.DB, runID string, resultCh <-chan entry.Result, mismatchCh <-chan entry.Mismatch, batchSize int, flushInterval time.Duration, logger *slog.Logger) *Recorder {
	if batchSize <= 0 {
		batchSize = 64
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		db:            db,
		runID:         runID,
		resultCh:      resultCh,
		mismatchCh:    mismatchCh,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		resultBatch:   make([]entry.Result, 0, batchSize),
		mismatchBatch: make([]entry.Mismatch, 0, batchSize),
	}
}

// Run consumes both channels until they are closed or ctx is cancelled,
// flushing whatever is buffered before returning.
func (rec *Recorder) Run(ctx context.Context) error {
	var err error
	rec.resultStmt, err = rec.db.Prepare(insertResultSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare result statement: %w", err)
	}
	defer rec.resultStmt.Close()

	rec.mismatchStmt, err = rec.db.Prepare(insertMismatchSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare mismatch statement: %w", err)
	}
	defer rec.mismatchStmt.Close()

	ticker := time.NewTicker(rec.flushInterval)
	defer ticker.Stop()

	rec.logger.Debug("recorder started", "run", rec.runID, "batch", rec.batchSize)

	resultCh := rec.resultCh
	mismatchCh := rec.mismatchCh

	for resultCh != nil || mismatchCh != nil {
		select {
		case <-ctx.Done():
			rec.logger.Debug("recorder cancelled", "pending", len(rec.resultBatch))
			return rec.flush()

		case r, ok := <-resultCh:
			if !ok {
				resultCh = nil
				continue
			}
			atomic.AddInt64(&rec.resultCount, 1)
			rec.resultBatch = append(rec.resultBatch, r)
			if len(rec.resultBatch) >= rec.batchSize {
				if err := rec.flushResults(); err != nil {
					return err
				}
			}

		case m, ok := <-mismatchCh:
			if !ok {
				mismatchCh = nil
				continue
			}
			n := atomic.AddInt64(&rec.mismatchCount, 1)
			// Only sample the first N mismatches to bound the table
			if rec.mismatchCapped {
				continue
			}
			rec.mismatchBatch = append(rec.mismatchBatch, m)
			if n >= maxMismatchesSampled {
				rec.mismatchCapped = true
				rec.logger.Warn("mismatch sample cap reached", "cap", maxMismatchesSampled)
			}
			if len(rec.mismatchBatch) >= rec.batchSize || rec.mismatchCapped {
				if err := rec.flushMismatches(); err != nil {
					return err
				}
			}

		case <-ticker.C:
			if err := rec.flush(); err != nil {
				return err
			}
		}
	}

	return rec.flush()
}

// Progress returns current counts (safe for concurrent access).
func (rec *Recorder) Progress() Progress {
	return Progress{
		Results:    atomic.LoadInt64(&rec.resultCount),
		Mismatches: atomic.LoadInt64(&rec.mismatchCount),
	}
}

func (rec *Recorder) flush() error {
	if err := rec.flushResults(); err != nil {
		return err
	}
	return rec.flushMismatches()
}

func (rec *Recorder) flushResults() error {
	if len(rec.resultBatch) == 0 {
		return nil
	}

	flushStart := time.Now()
	tx, err := rec.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin result transaction: %w", err)
	}

	stmt := tx.Stmt(rec.resultStmt)
	for _, r := range rec.resultBatch {
		_, err := stmt.Exec(rec.runID, r.Suite, r.Impl, r.Calls, r.Iterations, r.Elapsed.Nanoseconds(), formatDigest(r.Digest))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert result %q/%q: %w", r.Suite, r.Impl, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result transaction: %w", err)
	}

	rec.logger.Debug("flushed results", "count", len(rec.resultBatch), "took", time.Since(flushStart))
	rec.resultBatch = rec.resultBatch[:0]
	return nil
}

func (rec *Recorder) flushMismatches() error {
	if len(rec.mismatchBatch) == 0 {
		return nil
	}

	tx, err := rec.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin mismatch transaction: %w", err)
	}

	stmt := tx.Stmt(rec.mismatchStmt)
	for _, m := range rec.mismatchBatch {
		_, err := stmt.Exec(rec.runID, m.Suite, m.Line, m.Call, m.Path, m.Base, m.Got, m.Want)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert mismatch at %s:%d: %w", m.Suite, m.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mismatch transaction: %w", err)
	}

	rec.mismatchBatch = rec.mismatchBatch[:0]
	return nil
}

// Digests are stored as fixed-width hex since SQLite integers are signed.
func formatDigest(d uint64) string {
	return fmt.Sprintf("%016x", d)
}

func parseDigest(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 64)
}
