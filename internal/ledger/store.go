package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Run is one build invocation.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	DryRun       bool
	Total        int
	AlreadyBuilt int
	Converted    int
	Failed       int
	Added        int
	Removed      int
	Error        string
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Totals are the counters written when a run finishes.
type Totals struct {
	Total        int
	AlreadyBuilt int
	Converted    int
	Failed       int
	Added        int
	Removed      int
}

// RecordOutcome is the result stored for one record of a run.
type RecordOutcome struct {
	RunID      string
	Identity   string
	Platform   string
	ExternalID string
	Outcome    string
	ExitCode   int
	Detail     string
	Duration   time.Duration
	RecordedAt time.Time
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

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

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a new run under id, or under a fresh uuid when id is empty.
func (s *Store) BeginRun(ctx context.Context, id string, dryRun bool) (Run, error) {
	if id == "" {
		id = uuid.NewString()
	}
	run := Run{
		ID:        id,
		StartedAt: s.now().UTC(),
		DryRun:    dryRun,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), boolToInt(dryRun),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordOutcome appends one record result to a run.
func (s *Store) RecordOutcome(ctx context.Context, outcome RecordOutcome) error {
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_records (
            run_id, identity, platform, external_id, outcome, exit_code, detail, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID,
		outcome.Identity,
		outcome.Platform,
		outcome.ExternalID,
		outcome.Outcome,
		outcome.ExitCode,
		nullableString(outcome.Detail),
		outcome.Duration.Milliseconds(),
		formatTime(outcome.RecordedAt.UTC()),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// FinishRun stores the run counters and the run-level error, if any.
func (s *Store) FinishRun(ctx context.Context, runID string, totals Totals, runErr error) error {
	var errText any
	if runErr != nil {
		errText = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, already_built = ?, converted = ?, failed = ?,
            added = ?, removed = ?, error = ? WHERE id = ?`,
		formatTime(s.now().UTC()),
		totals.Total,
		totals.AlreadyBuilt,
		totals.Converted,
		totals.Failed,
		totals.Added,
		totals.Removed,
		errText,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, total, already_built, converted, failed, added, removed, error
         FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, total, already_built, converted, failed, added, removed, error
         FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// RunRecords returns the record outcomes of a run in insertion order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]RecordOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, identity, platform, external_id, outcome, exit_code, detail, duration_ms, recorded_at
         FROM run_records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var out []RecordOutcome
	for rows.Next() {
		var (
			rec        RecordOutcome
			detail     sql.NullString
			durationMS int64
			recordedAt string
		)
		if err := rows.Scan(&rec.RunID, &rec.Identity, &rec.Platform, &rec.ExternalID, &rec.Outcome,
			&rec.ExitCode, &detail, &durationMS, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.Detail = detail.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.RecordedAt = parseTime(recordedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run records: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		dryRun     int
		errText    sql.NullString
	)
	if err := row.Scan(&run.ID, &startedAt, &finishedAt, &dryRun, &run.Total, &run.AlreadyBuilt,
		&run.Converted, &run.Failed, &run.Added, &run.Removed, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.DryRun = dryRun != 0
	run.Error = errText.String
	return run, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
