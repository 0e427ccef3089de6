package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
)

// RunIndex is a secondary SQLite index over persisted run artifacts: it
// exists to answer "which runs do we have and how did they do" without
// reading every JSON file back off disk. RunArtifactStore remains the
// source of truth for a run's full trial-level detail; RunIndex only ever
// stores the summary fields needed to list and sort runs.
type RunIndex struct {
	db *sql.DB

	insertStmt *sql.Stmt
	listStmt   *sql.Stmt
}

// OpenRunIndex opens or creates a SQLite-backed run index at path.
func OpenRunIndex(path string) (*RunIndex, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty run index path")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create run index dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open run index: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping run index: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS run_index (
	id TEXT PRIMARY KEY,
	suite_id TEXT NOT NULL,
	mode TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	total_cases INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	errors INTEGER NOT NULL,
	pass_rate REAL NOT NULL,
	total_cost REAL NOT NULL,
	total_duration_ms INTEGER NOT NULL,
	gate_pass INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS run_index_suite_timestamp ON run_index(suite_id, timestamp);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init run index schema: %w", err)
	}

	insertStmt, err := db.Prepare(`
INSERT INTO run_index (id, suite_id, mode, timestamp, total_cases, passed, failed, errors, pass_rate, total_cost, total_duration_ms, gate_pass)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	suite_id = excluded.suite_id, mode = excluded.mode, timestamp = excluded.timestamp,
	total_cases = excluded.total_cases, passed = excluded.passed, failed = excluded.failed, errors = excluded.errors,
	pass_rate = excluded.pass_rate, total_cost = excluded.total_cost, total_duration_ms = excluded.total_duration_ms,
	gate_pass = excluded.gate_pass
`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: prepare run index insert: %w", err)
	}

	listStmt, err := db.Prepare(`
SELECT id, suite_id, mode, timestamp, total_cases, passed, failed, errors, pass_rate, total_cost, total_duration_ms, gate_pass
FROM run_index ORDER BY timestamp DESC LIMIT ?
`)
	if err != nil {
		_ = insertStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("store: prepare run index list: %w", err)
	}

	return &RunIndex{db: db, insertStmt: insertStmt, listStmt: listStmt}, nil
}

// Close releases the underlying SQLite connection.
func (idx *RunIndex) Close() error {
	if idx == nil || idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// IndexRun upserts run's summary fields. Safe to call after every
// RunArtifactStore.Save so the index never lags the artifact store.
func (idx *RunIndex) IndexRun(ctx context.Context, run eval.Run) error {
	if idx == nil || idx.insertStmt == nil {
		return errors.New("store: nil run index")
	}
	s := run.Summary
	gatePass := 0
	if s.GateResult.Pass {
		gatePass = 1
	}
	_, err := idx.insertStmt.ExecContext(ctx,
		run.ID, run.SuiteID, string(run.Mode), run.Timestamp,
		s.TotalCases, s.Passed, s.Failed, s.Errors, s.PassRate, s.TotalCost, s.TotalDurationMs, gatePass,
	)
	if err != nil {
		return fmt.Errorf("store: index run %q: %w", run.ID, err)
	}
	return nil
}

// RunIndexEntry is one row of the run index.
type RunIndexEntry struct {
	ID              string
	SuiteID         string
	Mode            string
	Timestamp       string
	TotalCases      int
	Passed          int
	Failed          int
	Errors          int
	PassRate        float64
	TotalCost       float64
	TotalDurationMs int64
	GatePass        bool
}

// ListRuns returns up to limit indexed runs, most recent first.
func (idx *RunIndex) ListRuns(ctx context.Context, limit int) ([]RunIndexEntry, error) {
	if idx == nil || idx.listStmt == nil {
		return nil, errors.New("store: nil run index")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := idx.listStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list run index: %w", err)
	}
	defer rows.Close()

	var entries []RunIndexEntry
	for rows.Next() {
		var e RunIndexEntry
		var gatePass int
		if err := rows.Scan(&e.ID, &e.SuiteID, &e.Mode, &e.Timestamp,
			&e.TotalCases, &e.Passed, &e.Failed, &e.Errors, &e.PassRate, &e.TotalCost, &e.TotalDurationMs, &gatePass); err != nil {
			return nil, fmt.Errorf("store: scan run index row: %w", err)
		}
		e.GatePass = gatePass != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate run index: %w", err)
	}
	return entries, nil
}
