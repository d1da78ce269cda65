// Package state persists the resume cursor and run history for batch
// rendering, backed by SQLite.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"clipforge/internal/logging"
)

// BatchState is the persisted resume position. The cursor counts fully
// processed tracks from the start of the sorted library.
type BatchState struct {
	LastProcessedIndex int
	TotalTrackCount    int
	ProcessedTracks    []string
	UpdatedAt          time.Time
}

// RunRecord summarizes one completed batch run.
type RunRecord struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	Policy        string
	JobsTotal     int
	JobsDone      int
	JobsFailed    int
	JobsCancelled int
	Cancelled     bool
}

// Store manages batch state persistence.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the state database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
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

	store := &Store{db: db, path: path, logger: logging.NewComponentLogger(logger, "state")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS batch_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_processed_index INTEGER NOT NULL,
			total_track_count INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS processed_tracks (
			path TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			policy TEXT NOT NULL,
			jobs_total INTEGER NOT NULL,
			jobs_done INTEGER NOT NULL,
			jobs_failed INTEGER NOT NULL,
			jobs_cancelled INTEGER NOT NULL,
			cancelled INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted batch state. A missing row yields the zero state.
// A cursor outside [0, total] is corrupt and resets to zero with a warning
// rather than failing the batch.
func (s *Store) Load(ctx context.Context) (BatchState, error) {
	var st BatchState
	var updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_processed_index, total_track_count, updated_at FROM batch_state WHERE id = 1",
	).Scan(&st.LastProcessedIndex, &st.TotalTrackCount, &updated)
	switch {
	case err == sql.ErrNoRows:
		return BatchState{}, nil
	case err != nil:
		return BatchState{}, fmt.Errorf("load batch state: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
		st.UpdatedAt = ts
	}

	if st.LastProcessedIndex < 0 || st.LastProcessedIndex > st.TotalTrackCount {
		s.logger.Warn("persisted cursor out of range, resetting to start",
			logging.Int("cursor", st.LastProcessedIndex),
			logging.Int("total", st.TotalTrackCount))
		st.LastProcessedIndex = 0
		st.ProcessedTracks = nil
		return st, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT path FROM processed_tracks ORDER BY position")
	if err != nil {
		return BatchState{}, fmt.Errorf("load processed tracks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return BatchState{}, fmt.Errorf("scan processed track: %w", err)
		}
		st.ProcessedTracks = append(st.ProcessedTracks, path)
	}
	if err := rows.Err(); err != nil {
		return BatchState{}, fmt.Errorf("iterate processed tracks: %w", err)
	}
	return st, nil
}

// Save writes the batch state in a single transaction, replacing the
// previous snapshot entirely.
func (s *Store) Save(ctx context.Context, st BatchState) error {
	if st.LastProcessedIndex < 0 || st.LastProcessedIndex > st.TotalTrackCount {
		return fmt.Errorf("refusing to persist out-of-range cursor %d (total %d)",
			st.LastProcessedIndex, st.TotalTrackCount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batch_state (id, last_processed_index, total_track_count, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			last_processed_index = excluded.last_processed_index,
			total_track_count = excluded.total_track_count,
			updated_at = excluded.updated_at`,
		st.LastProcessedIndex, st.TotalTrackCount, timestamp); err != nil {
		return fmt.Errorf("save batch state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_tracks"); err != nil {
		return fmt.Errorf("clear processed tracks: %w", err)
	}
	for i, path := range st.ProcessedTracks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO processed_tracks (path, position) VALUES (?, ?)", path, i); err != nil {
			return fmt.Errorf("save processed track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Reset clears the batch state so the next run starts from the beginning.
// Run history is kept.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM batch_state"); err != nil {
		return fmt.Errorf("reset batch state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_tracks"); err != nil {
		return fmt.Errorf("reset processed tracks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// RecordRun appends one run summary to the history.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	cancelled := 0
	if rec.Cancelled {
		cancelled = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_history (
			started_at, finished_at, policy,
			jobs_total, jobs_done, jobs_failed, jobs_cancelled, cancelled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Policy,
		rec.JobsTotal, rec.JobsDone, rec.JobsFailed, rec.JobsCancelled,
		cancelled)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RunHistory returns the most recent runs, newest first.
func (s *Store) RunHistory(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT started_at, finished_at, policy,
			jobs_total, jobs_done, jobs_failed, jobs_cancelled, cancelled
		 FROM run_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished string
		var cancelled int
		if err := rows.Scan(&started, &finished, &rec.Policy,
			&rec.JobsTotal, &rec.JobsDone, &rec.JobsFailed, &rec.JobsCancelled, &cancelled); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		rec.Cancelled = cancelled != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run history: %w", err)
	}
	return records, nil
}
