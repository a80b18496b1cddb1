package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordOutcome upserts one manifest line for a run. Re-recording the same
// source path replaces the earlier row, so recovery can overwrite interim
// results.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO outcomes (run_id, source_path, dest_path, result, reason, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, source_path) DO UPDATE SET
             dest_path = excluded.dest_path,
             result = excluded.result,
             reason = excluded.reason,
             recorded_at = excluded.recorded_at`,
		outcome.RunID,
		outcome.SourcePath,
		nullableString(outcome.DestPath),
		outcome.Result,
		nullableString(outcome.Reason),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// OutcomesByRun returns a run's manifest lines ordered by source path.
func (s *Store) OutcomesByRun(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, dest_path, result, reason, recorded_at
         FROM outcomes WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var (
			outcome     Outcome
			destPath    sql.NullString
			reason      sql.NullString
			recordedRaw string
		)
		if err := rows.Scan(&outcome.RunID, &outcome.SourcePath, &destPath, &outcome.Result, &reason, &recordedRaw); err != nil {
			return nil, err
		}
		outcome.DestPath = destPath.String
		outcome.Reason = reason.String
		if recorded, err := parseTimeString(recordedRaw); err == nil {
			outcome.RecordedAt = recorded
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}
