package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginRun records a new active batch run.
func (s *Store) BeginRun(ctx context.Context, id, sourceDir, libraryDir string) (*Run, error) {
	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (id, source_dir, library_dir, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		sourceDir,
		libraryDir,
		RunActive,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, SourceDir: sourceDir, LibraryDir: libraryDir, Status: RunActive, StartedAt: now}, nil
}

// FinishRun stamps the run's terminal status and completion time.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus) error {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status,
		now.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrEntryNotFound)
	}
	return nil
}

// GetRun fetches one run by identifier; nil when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_dir, library_dir, status, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ActiveRuns lists runs that never finished, oldest first. A non-empty result
// on startup means the previous process died mid-batch and recovery must run.
func (s *Store) ActiveRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_dir, library_dir, status, started_at, finished_at
         FROM runs WHERE status = ? ORDER BY started_at`, RunActive)
	if err != nil {
		return nil, fmt.Errorf("query active runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRuns returns every run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_dir, library_dir, status, started_at, finished_at
         FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		sourceDir   string
		libraryDir  string
		status      string
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &sourceDir, &libraryDir, &status, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}

	run := &Run{ID: id, SourceDir: sourceDir, LibraryDir: libraryDir, Status: RunStatus(status)}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}
