package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mediasort/internal/config"
	"mediasort/internal/journal"
	"mediasort/internal/logging"
	"mediasort/internal/manifest"
	"mediasort/internal/media"
	"mediasort/internal/mover"
	"mediasort/internal/plan"
	"mediasort/internal/scan"
	"mediasort/internal/services"
)

// ErrAlreadyRunning indicates another process holds the batch lock.
var ErrAlreadyRunning = errors.New("another mediasort run is already active")

// Result is the final report of one batch run.
type Result struct {
	RunID        string
	Status       journal.RunStatus
	ManifestPath string
	Moved        int
	Excluded     int
	Failed       int
}

// Coordinator owns the batch lifecycle: scan, hash, plan, move, manifest.
// One coordinator drives one run at a time, guarded by a filesystem lock so
// no other process writes into the reservation namespace concurrently.
type Coordinator struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *journal.Store
	scanner  *scan.Scanner
	builder  *plan.Builder
	mover    *mover.Mover
	lock     *flock.Flock
	progress Progress
}

func New(cfg *config.Config, store *journal.Store, logger *slog.Logger, extract scan.MetadataFunc) (*Coordinator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	builder, err := plan.NewBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		cfg:     cfg,
		logger:  logger.With(logging.String(logging.FieldComponent, "batch")),
		store:   store,
		scanner: scan.New(cfg, logger, extract),
		builder: builder,
		mover:   mover.New(store, cfg, logger),
		lock:    flock.New(filepath.Join(cfg.Paths.JournalDir, "mediasort.lock")),
	}, nil
}

// Progress returns the live counters for this coordinator's current run.
func (c *Coordinator) Progress() Snapshot {
	return c.progress.Snapshot()
}

// Builder exposes the compiled plan builder, for dry runs and previews.
func (c *Coordinator) Builder() *plan.Builder {
	return c.builder
}

// Plan performs the read-only half of a run: scan, hash, and plan building.
// Nothing on disk changes.
func (c *Coordinator) Plan(ctx context.Context) (*plan.Plan, *scan.Result, error) {
	scanned, err := c.scanner.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.hashFiles(ctx, scanned.Files)
	built, err := c.builder.Build(ctx, scanned.Files, time.Now())
	if err != nil {
		return nil, scanned, err
	}
	return built, scanned, nil
}

// Run executes a full batch: plan, then journaled moves across the worker
// pool, then manifest persistence. One file's failure is isolated; only
// journal write failures abort the batch.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	locked, err := c.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = c.lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("batch starting")

	built, _, err := c.Plan(ctx)
	if err != nil {
		return nil, err
	}

	run, err := c.store.BeginRun(ctx, runID, c.cfg.Paths.SourceDir, c.cfg.Paths.LibraryDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mover.ErrJournalWrite, err)
	}

	for _, exclusion := range built.Excluded {
		outcome := journal.Outcome{
			RunID:      runID,
			SourcePath: exclusion.File.Path,
			Result:     manifest.ResultExcluded,
			Reason:     exclusion.Reason,
		}
		if err := c.store.RecordOutcome(ctx, outcome); err != nil {
			return c.abort(ctx, run, fmt.Errorf("%w: %v", mover.ErrJournalWrite, err))
		}
	}

	failedCount, err := c.moveAll(ctx, runID, built.Items)
	if err != nil {
		return c.abort(ctx, run, err)
	}

	status := journal.RunCompleted
	if failedCount > 0 {
		status = journal.RunCompletedWithErrors
	}
	if err := c.store.FinishRun(ctx, runID, status); err != nil {
		return nil, fmt.Errorf("%w: %v", mover.ErrJournalWrite, err)
	}
	run.Status = status

	result, err := c.report(ctx, run)
	if err != nil {
		return nil, err
	}
	logger.Info("batch finished",
		logging.String("status", string(status)),
		logging.Int("moved", result.Moved),
		logging.Int("excluded", result.Excluded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// hashFiles warms the fingerprint cache across the hash worker pool so
// duplicate detection (single-threaded) finds every fingerprint computed.
// Hash failures are left for planning to classify.
func (c *Coordinator) hashFiles(ctx context.Context, files []*media.SourceFile) {
	workers := c.cfg.Workers.HashWorkers
	if workers < 1 {
		workers = 1
	}

	work := make(chan *media.SourceFile)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range work {
				if _, err := file.Fingerprint(); err == nil {
					c.progress.addHashed()
				}
			}
		}()
	}

	for _, file := range files {
		select {
		case work <- file:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return
		}
	}
	close(work)
	wg.Wait()
}

// moveAll executes planned moves across the move worker pool in cost order.
// It returns the number of failed files, or an error when the journal stops
// accepting writes.
func (c *Coordinator) moveAll(ctx context.Context, runID string, items []*plan.Item) (int, error) {
	ordered := make([]*plan.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		pa, pb := media.Priority(a.File.Type, a.File.Size), media.Priority(b.File.Type, b.File.Size)
		if pa != pb {
			return pa < pb
		}
		return a.File.Size > b.File.Size
	})

	workers := c.cfg.Workers.MoveWorkers
	if workers < 1 {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failed   int
		fatalErr error
	)
	work := make(chan *plan.Item)

	setFatal := func(err error) {
		mu.Lock()
		if fatalErr == nil {
			fatalErr = err
		}
		mu.Unlock()
	}
	fatal := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fatalErr != nil
	}

	// Workers keep ranging over work after a fatal error, discarding items,
	// so the dispatcher's send can never block with no receiver left.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if fatal() {
					continue
				}
				outcome := journal.Outcome{
					RunID:      runID,
					SourcePath: item.File.Path,
					DestPath:   item.DestPath,
					Result:     manifest.ResultMoved,
				}
				_, err := c.mover.Move(ctx, runID, item.File, item.DestPath, item.Overwrite)
				if err != nil {
					if errors.Is(err, mover.ErrJournalWrite) {
						setFatal(err)
						continue
					}
					outcome.Result = manifest.ResultFailed
					outcome.Reason = err.Error()
					mu.Lock()
					failed++
					mu.Unlock()
				} else {
					c.progress.addMoved(item.File.Size)
				}
				if err := c.store.RecordOutcome(ctx, outcome); err != nil {
					setFatal(fmt.Errorf("%w: %v", mover.ErrJournalWrite, err))
				}
			}
		}()
	}

	// Cancellation is honored between files: in-flight moves always finish
	// or fail cleanly before the pool drains.
dispatch:
	for _, item := range ordered {
		if fatal() {
			break
		}
		select {
		case work <- item:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(work)
	wg.Wait()

	if fatalErr != nil {
		return failed, fatalErr
	}
	return failed, ctx.Err()
}

func (c *Coordinator) abort(ctx context.Context, run *journal.Run, cause error) (*Result, error) {
	if err := c.store.FinishRun(ctx, run.ID, journal.RunAborted); err != nil {
		c.logger.Error("cannot mark run aborted", logging.Error(err))
	}
	return nil, cause
}

func (c *Coordinator) report(ctx context.Context, run *journal.Run) (*Result, error) {
	outcomes, err := c.store.OutcomesByRun(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("collect outcomes: %w", err)
	}
	m := manifest.FromJournal(run, outcomes)
	path, err := m.Write(c.cfg.Paths.LogDir)
	if err != nil {
		return nil, err
	}
	moved, excluded, failedCount := m.Counts()
	return &Result{
		RunID:        run.ID,
		Status:       run.Status,
		ManifestPath: path,
		Moved:        moved,
		Excluded:     excluded,
		Failed:       failedCount,
	}, nil
}

// Recover replays the journal after a crash: incomplete entries are
// finalized, re-attempted, or failed, and runs left active are closed out
// as aborted. Holds the batch lock.
func (c *Coordinator) Recover(ctx context.Context) (*mover.RecoveryReport, error) {
	locked, err := c.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = c.lock.Unlock() }()

	report, err := c.mover.Recover(ctx)
	if err != nil {
		return report, err
	}

	stale, err := c.store.ActiveRuns(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: list active runs: %v", journal.ErrJournalCorruption, err)
	}
	for _, run := range stale {
		if err := c.store.FinishRun(ctx, run.ID, journal.RunAborted); err != nil {
			return report, fmt.Errorf("close stale run %s: %w", run.ID, err)
		}
		c.logger.Info("closed interrupted run", logging.String(logging.FieldRunID, run.ID))
	}
	return report, nil
}
