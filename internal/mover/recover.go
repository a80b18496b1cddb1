package mover

import (
	"context"
	"fmt"
	"os"

	"mediasort/internal/fileutil"
	"mediasort/internal/journal"
	"mediasort/internal/logging"
	"mediasort/internal/media"
)

// RecoveryReport summarizes what restart recovery did with the journal's
// incomplete entries.
type RecoveryReport struct {
	Finalized       int
	Reattempted     int
	Failed          int
	PartialsCleaned int
}

// Recover scans the journal for entries not in a terminal state and brings
// the filesystem and journal back into agreement:
//
//   - a partial temp copy on disk is deleted;
//   - a destination that already holds the source's bytes is finalized
//     (lingering source removed, entry committed);
//   - an entry whose source is still in place is re-attempted as a fresh
//     journaled move, and the interrupted entry is closed out;
//   - an entry with neither a usable source nor a matching destination is
//     failed — recovery never overwrites a destination it cannot prove this
//     batch produced.
//
// Journal read errors abort recovery entirely; guessing intent against an
// unreadable journal risks data loss.
func (m *Mover) Recover(ctx context.Context) (*RecoveryReport, error) {
	incomplete, err := m.store.IncompleteEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: scan incomplete entries: %v", journal.ErrJournalCorruption, err)
	}

	report := &RecoveryReport{}
	for _, entry := range incomplete {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := m.recoverEntry(ctx, entry, report); err != nil {
			return report, err
		}
	}
	m.logger.Info("recovery complete",
		logging.Int("finalized", report.Finalized),
		logging.Int("reattempted", report.Reattempted),
		logging.Int("failed", report.Failed))
	return report, nil
}

func (m *Mover) recoverEntry(ctx context.Context, entry *journal.Entry, report *RecoveryReport) error {
	if entry.TempPath != "" {
		if err := os.Remove(entry.TempPath); err == nil {
			report.PartialsCleaned++
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("remove partial %s: %w", entry.TempPath, err)
		}
	}

	if m.destinationHoldsSource(entry) {
		return m.finalize(ctx, entry, report)
	}

	if _, err := os.Lstat(entry.SourcePath); err == nil {
		return m.reattempt(ctx, entry, report)
	}

	m.fail(ctx, entry, fmt.Errorf("source missing and destination unverified after interruption"))
	report.Failed++
	return nil
}

// destinationHoldsSource proves the destination contains the journaled
// file's bytes. Without that proof the destination is not ours to touch.
func (m *Mover) destinationHoldsSource(entry *journal.Entry) bool {
	info, err := os.Stat(entry.DestPath)
	if err != nil || (entry.Size > 0 && info.Size() != entry.Size) {
		return false
	}

	expected := entry.Fingerprint
	if expected == "" {
		sum, err := fileutil.HashFile(entry.SourcePath)
		if err != nil {
			return false
		}
		expected = sum
	}
	actual, err := fileutil.HashFile(entry.DestPath)
	if err != nil {
		return false
	}
	return actual == expected
}

func (m *Mover) finalize(ctx context.Context, entry *journal.Entry, report *RecoveryReport) error {
	if err := os.Remove(entry.SourcePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove source %s: %w", entry.SourcePath, err)
	}

	// Advance whatever prefix of the protocol the crash left behind.
	steps := map[journal.State]journal.State{
		journal.StateReserved: placedState(entry.Strategy),
		journal.StateCopied:   journal.StateVerified,
		journal.StateRenamed:  journal.StateVerified,
		journal.StateVerified: journal.StateCommitted,
	}
	state := entry.State
	if state == journal.StatePlanned {
		// Destination verified but the reservation was never journaled;
		// record the missing steps in order.
		if err := m.transition(ctx, entry, journal.StatePlanned, journal.StateReserved); err != nil {
			return err
		}
		state = journal.StateReserved
	}
	for state != journal.StateCommitted {
		next, ok := steps[state]
		if !ok {
			return fmt.Errorf("%w: cannot finalize entry %d from state %s", journal.ErrJournalCorruption, entry.ID, state)
		}
		if err := m.transition(ctx, entry, state, next); err != nil {
			return err
		}
		state = next
	}
	report.Finalized++
	m.logger.Info("finalized interrupted move",
		logging.String(logging.FieldDestination, entry.DestPath))
	return nil
}

func (m *Mover) reattempt(ctx context.Context, entry *journal.Entry, report *RecoveryReport) error {
	m.fail(ctx, entry, fmt.Errorf("interrupted; re-attempted by recovery"))

	file := &media.SourceFile{Path: entry.SourcePath, Size: entry.Size}
	if entry.Fingerprint != "" {
		file.SetFingerprint(entry.Fingerprint)
	}
	fresh, err := m.Move(ctx, entry.RunID, file, entry.DestPath, false)
	if err != nil {
		report.Failed++
		m.logger.Warn("recovery re-attempt failed",
			logging.String(logging.FieldSource, entry.SourcePath),
			logging.Error(err))
		if fresh == nil {
			// Append itself failed: journal is not accepting writes.
			return err
		}
		return nil
	}
	report.Reattempted++
	return nil
}

func placedState(strategy journal.Strategy) journal.State {
	if strategy == journal.StrategyRename {
		return journal.StateRenamed
	}
	return journal.StateCopied
}
