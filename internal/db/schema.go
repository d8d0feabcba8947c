package db

import (
	"database/sql"
	"fmt"
)

const runsTableDDL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind INTEGER NOT NULL,
    started_at INTEGER NOT NULL,
    ended_at INTEGER,
    go_version TEXT NOT NULL,
    host TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT ''
);
`

const resultsTableDDL = `
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    suite TEXT NOT NULL,
    impl TEXT NOT NULL,
    calls INTEGER NOT NULL,
    iterations INTEGER NOT NULL,
    elapsed_ns INTEGER NOT NULL,
    digest TEXT NOT NULL
);
`

const mismatchesTableDDL = `
CREATE TABLE IF NOT EXISTS mismatches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    suite TEXT NOT NULL,
    line INTEGER NOT NULL,
    call TEXT NOT NULL,
    path TEXT NOT NULL,
    base TEXT NOT NULL,
    got TEXT NOT NULL,
    want TEXT NOT NULL
);
`

const runsStartedIndexDDL = `CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);`
const resultsRunIndexDDL = `CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);`
const mismatchesRunIndexDDL = `CREATE INDEX IF NOT EXISTS idx_mismatches_run ON mismatches(run_id);`

// InitSchema creates all tables and indexes in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		runsTableDDL,
		resultsTableDDL,
		mismatchesTableDDL,
		runsStartedIndexDDL,
		resultsRunIndexDDL,
		mismatchesRunIndexDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for recording runs.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only sessions.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// Finalize checkpoints the write-ahead log so the database file is
// self-contained after the writer exits.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}
