// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversion runs and converted jobs in a SQLite
// database. The converter uses it to skip files whose source did not change
// since the last run; the CLI uses it for run history and exports.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger database at path, creating its parent
// directory and schema when needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			source_root TEXT NOT NULL,
			dest_root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			error TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			unchanged INTEGER NOT NULL DEFAULT 0,
			unmatched INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			profile TEXT NOT NULL,
			source_path TEXT NOT NULL,
			dest_path TEXT NOT NULL,
			source_mod_time TEXT NOT NULL,
			converted_at TEXT NOT NULL,
			PRIMARY KEY (profile, source_path)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a running run for profile and returns its ID.
func (s *Store) BeginRun(ctx context.Context, p types.Profile) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, profile, source_root, dest_root, started_at, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.SourceRoot, p.DestRoot, formatTime(s.now()), string(types.RunRunning),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stores the outcome of a run. A non-nil runErr marks it failed.
func (s *Store) FinishRun(ctx context.Context, id string, summary types.RunSummary, runErr error) error {
	status := types.RunCompleted
	var msg sql.NullString
	if runErr != nil {
		status = types.RunFailed
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, error = ?,
			converted = ?, unchanged = ?, unmatched = ?
		 WHERE id = ?`,
		formatTime(s.now()), string(status), msg,
		summary.Converted, summary.Unchanged, summary.Unmatched, id,
	)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.RunRecord, error) {
	query := `SELECT id, profile, source_root, dest_root, started_at, finished_at,
			status, error, converted, unchanged, unmatched
		 FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var (
			r                 types.RunRecord
			started, status   string
			finished, errText sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Profile, &r.SourceRoot, &r.DestRoot, &started, &finished,
			&status, &errText, &r.Summary.Converted, &r.Summary.Unchanged, &r.Summary.Unmatched); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			r.FinishedAt = parseTime(finished.String)
		}
		r.Status = types.RunStatus(status)
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Jobs returns the recorded jobs ordered by profile and source path. An
// empty profile returns jobs of every profile.
func (s *Store) Jobs(ctx context.Context, profile string) ([]types.JobRecord, error) {
	query := `SELECT profile, source_path, dest_path, source_mod_time, converted_at FROM jobs`
	args := []any{}
	if profile != "" {
		query += ` WHERE profile = ?`
		args = append(args, profile)
	}
	query += ` ORDER BY profile, source_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobRecord
	for rows.Next() {
		var (
			j                  types.JobRecord
			modTime, converted string
		)
		if err := rows.Scan(&j.Profile, &j.SourcePath, &j.DestinationPath, &modTime, &converted); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.SourceModTime = parseTime(modTime)
		j.ConvertedAt = parseTime(converted)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Tracker returns a convert.Tracker scoped to profile.
func (s *Store) Tracker(profile string) *Tracker {
	return &Tracker{store: s, profile: profile}
}

// Tracker answers incremental-run questions for one profile.
type Tracker struct {
	store   *Store
	profile string
}

// Unchanged reports whether job was last converted to the same destination
// from a source with modTime.
func (t *Tracker) Unchanged(ctx context.Context, job types.ConversionJob, modTime time.Time) (bool, error) {
	var dest, stored string
	err := t.store.db.QueryRowContext(ctx,
		`SELECT dest_path, source_mod_time FROM jobs WHERE profile = ? AND source_path = ?`,
		t.profile, job.SourcePath,
	).Scan(&dest, &stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying job: %w", err)
	}
	return dest == job.DestinationPath && stored == formatTime(modTime), nil
}

// Record stores that job was converted from a source with modTime.
func (t *Tracker) Record(ctx context.Context, job types.ConversionJob, modTime time.Time) error {
	_, err := t.store.db.ExecContext(ctx,
		`INSERT INTO jobs (profile, source_path, dest_path, source_mod_time, converted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(profile, source_path) DO UPDATE SET
			dest_path=excluded.dest_path, source_mod_time=excluded.source_mod_time,
			converted_at=excluded.converted_at`,
		t.profile, job.SourcePath, job.DestinationPath, formatTime(modTime), formatTime(t.store.now()),
	)
	if err != nil {
		return fmt.Errorf("recording job: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
