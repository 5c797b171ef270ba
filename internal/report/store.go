package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"phototime/internal/resolve"
	"phototime/internal/timestamp"
)

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run summarizes one recorded library scan.
type Run struct {
	ID         string
	Root       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt *time.Time
	Files      int
	Updated    int
}

// Open initializes or connects to the history database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the history database location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun records the start of a scan.
func (s *Store) BeginRun(ctx context.Context, id, root string, dryRun bool) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, root, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		id,
		root,
		boolToInt(dryRun),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final totals for a scan.
func (s *Store) FinishRun(ctx context.Context, id string, files, updated int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, files = ?, updated = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		files,
		updated,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordDecision appends one per-file decision to a run.
func (s *Store) RecordDecision(ctx context.Context, runID string, decision resolve.Decision) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO decisions (run_id, path, source, action, resolved, prior, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		decision.Path,
		nullableString(string(decision.Source)),
		string(decision.Action),
		nullableTimeValue(decision.Resolved),
		nullableTimeValue(decision.Prior),
		nullableString(decision.Detail),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, root, dry_run, started_at, finished_at, files, updated
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by identifier.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, root, dry_run, started_at, finished_at, files, updated FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Decisions returns every decision recorded for a run in insertion order.
func (s *Store) Decisions(ctx context.Context, runID string) ([]resolve.Decision, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT path, source, action, resolved, prior, detail FROM decisions WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []resolve.Decision
	for rows.Next() {
		var (
			path     string
			source   sql.NullString
			action   string
			resolved sql.NullString
			prior    sql.NullString
			detail   sql.NullString
		)
		if err := rows.Scan(&path, &source, &action, &resolved, &prior, &detail); err != nil {
			return nil, err
		}
		decision := resolve.Decision{
			Path:   path,
			Source: timestamp.Source(source.String),
			Action: resolve.Action(action),
			Detail: detail.String,
		}
		if t, err := parseTimeString(resolved.String); err == nil {
			decision.Resolved = t
		}
		if t, err := parseTimeString(prior.String); err == nil {
			decision.Prior = t
		}
		decisions = append(decisions, decision)
	}
	return decisions, rows.Err()
}

// Prune removes the oldest runs beyond keep, cascading to their decisions.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, nil
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
        )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		id          string
		root        string
		dryRun      sql.NullInt64
		startedRaw  sql.NullString
		finishedRaw sql.NullString
		files       int
		updated     int
	)
	if err := scanner.Scan(&id, &root, &dryRun, &startedRaw, &finishedRaw, &files, &updated); err != nil {
		return Run{}, err
	}

	run := Run{
		ID:      id,
		Root:    root,
		DryRun:  dryRun.Valid && dryRun.Int64 != 0,
		Files:   files,
		Updated: updated,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTimeValue(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
