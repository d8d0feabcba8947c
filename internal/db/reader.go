package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/michaelscutari/pathnorm/internal/entry"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when an ID prefix matches more than one run.
var ErrAmbiguousRun = errors.New("ambiguous run id")

const selectRunColumns = `
	SELECT r.id, r.kind, r.started_at, COALESCE(r.ended_at, 0), r.go_version, r.host, r.note,
	       (SELECT COUNT(*) FROM results WHERE run_id = r.id) AS results
	FROM runs r`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (entry.Run, error) {
	var r entry.Run
	var started, ended int64
	if err := row.Scan(&r.ID, &r.Kind, &started, &ended, &r.GoVersion, &r.Host, &r.Note, &r.Results); err != nil {
		return r, err
	}
	r.StartedAt = time.Unix(0, started)
	if ended > 0 {
		r.EndedAt = time.Unix(0, ended)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func ListRuns(db *sql.DB, limit int) ([]entry.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(selectRunColumns+` ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []entry.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun resolves a run by full ID or unique ID prefix.
func GetRun(db *sql.DB, id string) (*entry.Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}

	rows, err := db.Query(selectRunColumns+` WHERE r.id = ? OR r.id LIKE ? ESCAPE '\' LIMIT 2`, id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var found []entry.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if r.ID == id {
			return &r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}
}

// LatestRun returns the most recently started run of the given kind.
func LatestRun(db *sql.DB, kind entry.RunKind) (*entry.Run, error) {
	row := db.QueryRow(selectRunColumns+` WHERE r.kind = ? ORDER BY r.started_at DESC LIMIT 1`, kind)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadResults loads the results of a run.
func LoadResults(db *sql.DB, runID, sortBy string) ([]entry.Result, error) {
	orderClause := "suite ASC, impl ASC"
	switch sortBy {
	case "impl":
		orderClause = "impl ASC, suite ASC"
	case "speed", "ns":
		orderClause = "CAST(elapsed_ns AS REAL) / (calls * iterations) ASC"
	case "suite":
		orderClause = "suite ASC, impl ASC"
	}

	query := fmt.Sprintf(`
		SELECT run_id, suite, impl, calls, iterations, elapsed_ns, digest
		FROM results
		WHERE run_id = ?
		ORDER BY %s
	`, orderClause)

	rows, err := db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []entry.Result
	for rows.Next() {
		var r entry.Result
		var elapsed int64
		var digest string
		if err := rows.Scan(&r.RunID, &r.Suite, &r.Impl, &r.Calls, &r.Iterations, &elapsed, &digest); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		r.Elapsed = time.Duration(elapsed)
		if r.Digest, err = parseDigest(digest); err != nil {
			return nil, fmt.Errorf("bad digest %q: %w", digest, err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// LoadMismatches loads up to limit recorded mismatches of a run.
func LoadMismatches(db *sql.DB, runID string, limit int) ([]entry.Mismatch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT run_id, suite, line, call, path, base, got, want
		FROM mismatches
		WHERE run_id = ?
		ORDER BY id ASC
		LIMIT ?
	`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var mismatches []entry.Mismatch
	for rows.Next() {
		var m entry.Mismatch
		if err := rows.Scan(&m.RunID, &m.Suite, &m.Line, &m.Call, &m.Path, &m.Base, &m.Got, &m.Want); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		mismatches = append(mismatches, m)
	}
	return mismatches, rows.Err()
}

// PruneRuns deletes all but the newest keep runs together with their results
// and mismatches. It returns the number of runs removed.
func PruneRuns(db *sql.DB, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin prune transaction: %w", err)
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM runs ORDER BY started_at DESC LIMIT -1 OFFSET ?`
	for _, table := range []string{"results", "mismatches"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run_id IN (`+stale+`)`, keep); err != nil {
			return 0, fmt.Errorf("failed to prune %s: %w", table, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return res.RowsAffected()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
