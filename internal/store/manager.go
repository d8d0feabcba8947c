// Package store manages the results database shared by the bench, replay and
// stress commands.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/michaelscutari/pathnorm/internal/db"
	"github.com/michaelscutari/pathnorm/internal/entry"

	_ "modernc.org/sqlite"
)

// ErrLocked is returned when another writer holds the database lock.
var ErrLocked = errors.New("another run is recording")

// RecordFunc produces results and mismatches for a run. It must not close the
// channels. Its context is cancelled if the recorder fails.
type RecordFunc func(ctx context.Context, results chan<- entry.Result, mismatches chan<- entry.Mismatch) error

// Manager handles the database lifecycle including locking and retention.
type Manager struct {
	path          string
	retention     int
	lockFile      *os.File
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewManager creates a manager for the database at path. A retention of zero
// keeps every run.
func NewManager(path string, retention int) *Manager {
	return &Manager{
		path:          path,
		retention:     retention,
		batchSize:     64,
		flushInterval: time.Second,
		logger:        slog.Default(),
	}
}

// SetLogger sets the logger used for recorder diagnostics.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// SetBatching sets how many rows are buffered and how often they are flushed.
func (m *Manager) SetBatching(size int, interval time.Duration) {
	m.batchSize = size
	m.flushInterval = interval
}

// Path returns the database path.
func (m *Manager) Path() string {
	return m.path
}

// Record opens the database for writing, starts a run of the given kind and
// streams everything fn produces into it. The run is stamped finished even
// when fn fails, so partial runs stay visible in history.
func (m *Manager) Record(ctx context.Context, kind entry.RunKind, note string, fn RecordFunc) (*entry.Run, error) {
	database, err := m.openWriter()
	if err != nil {
		return nil, err
	}
	defer m.closeWriter(database)

	run, err := db.BeginRun(database, kind, note)
	if err != nil {
		return nil, err
	}

	results := make(chan entry.Result, m.batchSize)
	mismatches := make(chan entry.Mismatch, m.batchSize)
	rec := db.NewRecorder(database, run.ID, results, mismatches, m.batchSize, m.flushInterval, m.logger)

	fnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The recorder gets its own context so buffered rows are drained after
	// fn returns, even on cancellation. If it fails, fn is cancelled and
	// whatever it still sends is discarded so it never blocks.
	recDone := make(chan error, 1)
	go func() {
		err := rec.Run(context.Background())
		if err != nil {
			cancel()
			discard(results, mismatches)
		}
		recDone <- err
	}()

	fnErr := fn(fnCtx, results, mismatches)
	close(results)
	close(mismatches)
	recErr := <-recDone

	if err := db.FinishRun(database, run); err != nil {
		return run, err
	}
	progress := rec.Progress()
	run.Results = progress.Results
	m.logger.Debug("run recorded", "id", run.ID, "results", progress.Results, "mismatches", progress.Mismatches)

	if recErr != nil {
		return run, fmt.Errorf("failed to record run: %w", recErr)
	}
	if fnErr != nil {
		return run, fnErr
	}
	return run, nil
}

// discard empties both channels until they are closed.
func discard(results <-chan entry.Result, mismatches <-chan entry.Mismatch) {
	for results != nil || mismatches != nil {
		select {
		case _, ok := <-results:
			if !ok {
				results = nil
			}
		case _, ok := <-mismatches:
			if !ok {
				mismatches = nil
			}
		}
	}
}

// OpenReader opens the database read-only.
func (m *Manager) OpenReader() (*sql.DB, error) {
	if _, err := os.Stat(m.path); err != nil {
		return nil, fmt.Errorf("no results database at %s: %w", m.path, err)
	}

	database, err := sql.Open("sqlite", m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	database.SetMaxOpenConns(1)
	if err := db.ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, nil
}

func (m *Manager) openWriter() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return nil, err
	}

	database, err := sql.Open("sqlite", m.path)
	if err != nil {
		m.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection; a single writer connection keeps them in force.
	database.SetMaxOpenConns(1)

	if err := db.ApplyWritePragmas(database); err != nil {
		database.Close()
		m.releaseLock()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := db.InitSchema(database); err != nil {
		database.Close()
		m.releaseLock()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

func (m *Manager) closeWriter(database *sql.DB) {
	if n, err := db.PruneRuns(database, m.retention); err != nil {
		m.logger.Warn("failed to prune old runs", "err", err)
	} else if n > 0 {
		m.logger.Debug("pruned old runs", "count", n)
	}

	if err := db.Finalize(database); err != nil {
		m.logger.Warn("failed to finalize database", "err", err)
	}
	database.Close()
	m.releaseLock()
}

func (m *Manager) acquireLock() error {
	f, err := os.OpenFile(m.path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire exclusive lock
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return ErrLocked
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		syscall.Flock(int(m.lockFile.Fd()), syscall.LOCK_UN)
		m.lockFile.Close()
		m.lockFile = nil
	}
}
