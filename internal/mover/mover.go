package mover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mediasort/internal/config"
	"mediasort/internal/fileutil"
	"mediasort/internal/journal"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/services"
)

// ErrJournalWrite indicates the journal could not record a move intent or
// state change. The journal is the correctness anchor: callers must abort
// the whole batch rather than continue without durable records.
var ErrJournalWrite = errors.New("journal write failed")

// ErrDestinationNotOwned indicates a destination became occupied by a file
// this batch does not own. The move fails rather than overwrite it.
var ErrDestinationNotOwned = errors.New("destination not owned by this batch")

// Mover executes journaled, crash-safe file moves. Same-volume moves are a
// single atomic rename; cross-volume moves copy to a temp sibling of the
// destination, verify the copy's fingerprint, rename it into place, then
// delete the source.
type Mover struct {
	store      *journal.Store
	logger     *slog.Logger
	retryLimit int

	// copyVerified performs one verified copy attempt; tests substitute it
	// to exercise the mismatch retry budget.
	copyVerified func(src, dst string) (string, error)
}

func New(store *journal.Store, cfg *config.Config, logger *slog.Logger) *Mover {
	if logger == nil {
		logger = logging.NewNop()
	}
	retryLimit := 1
	if cfg != nil && cfg.Organize.CopyRetryLimit >= 0 {
		retryLimit = cfg.Organize.CopyRetryLimit
	}
	return &Mover{
		store:        store,
		logger:       logger.With(logging.String(logging.FieldComponent, "mover")),
		retryLimit:   retryLimit,
		copyVerified: fileutil.CopyFileVerified,
	}
}

// Move transfers one file to its planned destination. The intent is
// journaled before any destination-visible effect; on success the entry is
// Committed and the source no longer exists. On failure the entry is Failed,
// any partial artifact is removed, and the source is untouched.
func (m *Mover) Move(ctx context.Context, runID string, file *media.SourceFile, destPath string, overwrite bool) (*journal.Entry, error) {
	strategy := journal.StrategyCopy
	if same, err := fileutil.SameVolume(file.Path, destPath); err == nil && same {
		strategy = journal.StrategyRename
	}

	entry := &journal.Entry{
		RunID:      runID,
		SourcePath: file.Path,
		DestPath:   destPath,
		Size:       file.Size,
		Strategy:   strategy,
	}
	if sum, ok := file.CachedFingerprint(); ok {
		entry.Fingerprint = sum
	}
	if err := m.store.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJournalWrite, err)
	}

	if err := m.execute(ctx, entry, overwrite); err != nil {
		m.fail(ctx, entry, err)
		return entry, err
	}
	m.logger.Info("moved",
		logging.String(logging.FieldSource, entry.SourcePath),
		logging.String(logging.FieldDestination, entry.DestPath))
	return entry, nil
}

func (m *Mover) execute(ctx context.Context, entry *journal.Entry, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(entry.DestPath), 0o755); err != nil {
		return services.Wrap(services.ErrFilesystem, "move", "mkdir", "cannot create destination directory", err)
	}

	// The destination may have appeared since planning. Only proceed over
	// an occupied path when the plan explicitly reserved it for overwrite.
	if !overwrite {
		if _, err := os.Lstat(entry.DestPath); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationNotOwned, entry.DestPath)
		}
	}

	if err := m.transition(ctx, entry, journal.StatePlanned, journal.StateReserved); err != nil {
		return err
	}

	if entry.Strategy == journal.StrategyRename {
		return m.executeRename(ctx, entry)
	}
	return m.executeCopy(ctx, entry)
}

func (m *Mover) executeRename(ctx context.Context, entry *journal.Entry) error {
	if err := os.Rename(entry.SourcePath, entry.DestPath); err != nil {
		return services.Wrap(services.ErrFilesystem, "move", "rename", "rename failed", err)
	}
	if err := m.transition(ctx, entry, journal.StateReserved, journal.StateRenamed); err != nil {
		return err
	}
	// Rename preserves bytes on the same volume; no re-hash needed.
	if err := m.transition(ctx, entry, journal.StateRenamed, journal.StateVerified); err != nil {
		return err
	}
	return m.transition(ctx, entry, journal.StateVerified, journal.StateCommitted)
}

func (m *Mover) executeCopy(ctx context.Context, entry *journal.Entry) error {
	tempPath := fileutil.TempSibling(entry.DestPath)
	if err := m.store.SetTempPath(ctx, entry.ID, tempPath); err != nil {
		return fmt.Errorf("%w: %v", ErrJournalWrite, err)
	}
	entry.TempPath = tempPath

	// Verification failures get a bounded retry; an interrupted copy must
	// never be trusted, so each attempt starts from scratch.
	var sum string
	var copyErr error
	for attempt := 0; attempt <= m.retryLimit; attempt++ {
		sum, copyErr = m.copyVerified(entry.SourcePath, tempPath)
		if copyErr == nil {
			break
		}
		if !errors.Is(copyErr, fileutil.ErrFingerprintMismatch) {
			return services.Wrap(services.ErrFilesystem, "move", "copy", "copy failed", copyErr)
		}
		m.logger.Warn("fingerprint mismatch, retrying copy",
			logging.String(logging.FieldSource, entry.SourcePath),
			logging.Int("attempt", attempt+1))
	}
	if copyErr != nil {
		return services.Wrap(services.ErrFilesystem, "move", "copy", "copy verification exhausted retries", copyErr)
	}

	if err := m.transition(ctx, entry, journal.StateReserved, journal.StateCopied); err != nil {
		return err
	}
	if err := m.store.SetFingerprint(ctx, entry.ID, sum); err != nil {
		return fmt.Errorf("%w: %v", ErrJournalWrite, err)
	}
	entry.Fingerprint = sum
	if err := m.transition(ctx, entry, journal.StateCopied, journal.StateVerified); err != nil {
		return err
	}

	if err := os.Rename(tempPath, entry.DestPath); err != nil {
		return services.Wrap(services.ErrFilesystem, "move", "rename", "cannot move verified copy into place", err)
	}
	if err := os.Remove(entry.SourcePath); err != nil {
		// Destination is complete and verified; a lingering source is a
		// cleanup problem, not data loss.
		m.logger.Warn("cannot remove source after verified copy",
			logging.String(logging.FieldSource, entry.SourcePath),
			logging.Error(err))
	}
	return m.transition(ctx, entry, journal.StateVerified, journal.StateCommitted)
}

func (m *Mover) transition(ctx context.Context, entry *journal.Entry, from, to journal.State) error {
	if err := m.store.Transition(ctx, entry.ID, from, to); err != nil {
		return fmt.Errorf("%w: %v", ErrJournalWrite, err)
	}
	entry.State = to
	return nil
}

// fail records the failure and removes any partial artifact. Failures to
// record failure are logged; there is nothing better to do with them.
func (m *Mover) fail(ctx context.Context, entry *journal.Entry, cause error) {
	if entry.TempPath != "" {
		if err := os.Remove(entry.TempPath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("cannot remove partial copy", logging.String(logging.FieldDestination, entry.TempPath), logging.Error(err))
		}
	}
	if err := m.store.MarkFailed(ctx, entry.ID, cause.Error()); err != nil {
		m.logger.Error("cannot journal failure", logging.Int64("entry", entry.ID), logging.Error(err))
		return
	}
	entry.State = journal.StateFailed
	entry.ErrorMessage = cause.Error()
}
