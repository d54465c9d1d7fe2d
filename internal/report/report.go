// Package report records worldtrim runs and their per-stage counts in a
// SQLite ledger.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// Ledger is an open run ledger.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Row is one recorded stage metric.
type Row struct {
	Stage     string
	Dimension string
	Metric    string
	Value     int64
}

// Run is one recorded invocation.
type Run struct {
	ID         int64
	World      string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Open opens or creates the ledger at path.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("empty ledger path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			world TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			stage TEXT NOT NULL,
			dimension TEXT NOT NULL,
			metric TEXT NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun inserts a running entry for world and returns its id.
func (l *Ledger) BeginRun(ctx context.Context, world string) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (world, status, started_at) VALUES (?, ?, ?)`,
		world, StatusRunning, l.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Record stores the metrics of one stage, in metric name order. dimension
// is empty for stages that are not per dimension.
func (l *Ledger) Record(ctx context.Context, runID int64, stage, dimension string, metrics map[string]int64) error {
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		names = append(names, k)
	}
	slices.Sort(names)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM results WHERE run_id = ?`, runID).Scan(&seq); err != nil {
		return fmt.Errorf("read result seq: %w", err)
	}
	for _, name := range names {
		seq++
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, seq, stage, dimension, metric, value) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, seq, stage, dimension, name, metrics[name]); err != nil {
			return fmt.Errorf("insert result %s.%s: %w", stage, name, err)
		}
	}
	return tx.Commit()
}

// FinishRun marks the run done. A non-nil runErr marks it failed.
func (l *Ledger) FinishRun(ctx context.Context, runID int64, runErr error) error {
	status, msg := StatusOK, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	if _, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, msg, l.now().UnixMilli(), runID); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// Results returns the recorded metrics of a run in insertion order.
func (l *Ledger) Results(ctx context.Context, runID int64) ([]Row, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT stage, dimension, metric, value FROM results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Stage, &r.Dimension, &r.Metric, &r.Value); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns the run with the given id.
func (l *Ledger) Run(ctx context.Context, runID int64) (Run, error) {
	var (
		r                 Run
		started, finished int64
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT id, world, status, error, started_at, finished_at FROM runs WHERE id = ?`, runID).
		Scan(&r.ID, &r.World, &r.Status, &r.Error, &started, &finished)
	if err != nil {
		return Run{}, fmt.Errorf("query run %d: %w", runID, err)
	}
	r.StartedAt = time.UnixMilli(started)
	if finished != 0 {
		r.FinishedAt = time.UnixMilli(finished)
	}
	return r, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
