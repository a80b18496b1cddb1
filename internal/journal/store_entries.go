package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const entryColumns = "id, run_id, source_path, dest_path, temp_path, fingerprint, size, strategy, state, error_message, created_at, updated_at"

// Append journals a new move intent in StatePlanned. This must hit disk
// before any destination-visible filesystem effect for the same file.
func (s *Store) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO entries (
            run_id, source_path, dest_path, temp_path, fingerprint, size,
            strategy, state, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.SourcePath,
		entry.DestPath,
		nullableString(entry.TempPath),
		nullableString(entry.Fingerprint),
		entry.Size,
		entry.Strategy,
		StatePlanned,
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	entry.State = StatePlanned
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

// Transition moves an entry from one state to the next, enforcing the state
// machine. The from-state guard makes the update a compare-and-swap, so a
// recovery process and a live mover cannot both advance the same entry.
func (s *Store) Transition(ctx context.Context, id int64, from, to State) error {
	if !transitionAllowed(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE entries SET state = ?, updated_at = ? WHERE id = ? AND state = ?`,
		to,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		from,
	)
	if err != nil {
		return fmt.Errorf("transition entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d not in state %s: %w", id, from, ErrEntryNotFound)
	}
	return nil
}

// SetTempPath records the temp sibling used by a cross-volume copy. Journaled
// before the copy starts so recovery knows which partial to remove.
func (s *Store) SetTempPath(ctx context.Context, id int64, tempPath string) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE entries SET temp_path = ?, updated_at = ? WHERE id = ?`,
		nullableString(tempPath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set temp path: %w", err)
	}
	return nil
}

// SetFingerprint records the verified content fingerprint of an entry.
func (s *Store) SetFingerprint(ctx context.Context, id int64, fingerprint string) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE entries SET fingerprint = ?, updated_at = ? WHERE id = ?`,
		nullableString(fingerprint),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set fingerprint: %w", err)
	}
	return nil
}

// MarkFailed moves an entry to the absorbing failed state with a reason.
// Committed entries cannot fail retroactively.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE entries SET state = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND state NOT IN (?, ?)`,
		StateFailed,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StateCommitted,
		StateFailed,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark failed rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d not failable: %w", id, ErrEntryNotFound)
	}
	return nil
}

// GetEntry fetches one entry by identifier; nil when absent.
func (s *Store) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// EntriesByRun returns a run's entries in journal order.
func (s *Store) EntriesByRun(ctx context.Context, runID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries by run: %w", err)
	}
	return collectEntries(rows)
}

// IncompleteEntries returns every entry not yet in a terminal state, in
// journal order. This is the recovery worklist.
func (s *Store) IncompleteEntries(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE state NOT IN (?, ?) ORDER BY id`,
		StateCommitted, StateFailed)
	if err != nil {
		return nil, fmt.Errorf("query incomplete entries: %w", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	defer rows.Close()
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           int64
		runID        string
		sourcePath   string
		destPath     string
		tempPath     sql.NullString
		fingerprint  sql.NullString
		size         int64
		strategy     string
		state        string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&id,
		&runID,
		&sourcePath,
		&destPath,
		&tempPath,
		&fingerprint,
		&size,
		&strategy,
		&state,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		RunID:        runID,
		SourcePath:   sourcePath,
		DestPath:     destPath,
		TempPath:     tempPath.String,
		Fingerprint:  fingerprint.String,
		Size:         size,
		Strategy:     Strategy(strategy),
		State:        State(state),
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		entry.UpdatedAt = updated
	}
	return entry, nil
}
