package mover_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediasort/internal/fileutil"
	"mediasort/internal/journal"
	"mediasort/internal/media"
	"mediasort/internal/mover"
	"mediasort/internal/testsupport"
)

func mustHash(t *testing.T, path string) string {
	t.Helper()
	sum, err := fileutil.HashFile(path)
	if err != nil {
		t.Fatalf("hash %s: %v", path, err)
	}
	return sum
}

func newFile(t *testing.T, path string, content []byte) *media.SourceFile {
	t.Helper()
	testsupport.WriteFileContent(t, path, content)
	return &media.SourceFile{Path: path, Size: int64(len(content))}
}

func TestMoveSameVolumeRename(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run-1", cfg.Paths.SourceDir, cfg.Paths.LibraryDir); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	file := newFile(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), []byte("payload"))
	dest := filepath.Join(cfg.Paths.LibraryDir, "Event", "a.jpg")

	m := mover.New(store, cfg, nil)
	entry, err := m.Move(ctx, "run-1", file, dest, false)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if entry.State != journal.StateCommitted {
		t.Fatalf("state = %v", entry.State)
	}
	if entry.Strategy != journal.StrategyRename {
		t.Fatalf("strategy = %v, temp dirs share a volume", entry.Strategy)
	}
	if _, err := os.Lstat(file.Path); !os.IsNotExist(err) {
		t.Fatal("source still present after move")
	}
	got, err := os.ReadFile(dest)
	if err != nil || string(got) != "payload" {
		t.Fatalf("destination = %q, %v", got, err)
	}
}

func TestMoveRefusesForeignDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run-1", cfg.Paths.SourceDir, cfg.Paths.LibraryDir); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	file := newFile(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), []byte("payload"))
	dest := filepath.Join(cfg.Paths.LibraryDir, "a.jpg")
	testsupport.WriteFileContent(t, dest, []byte("someone else's file"))

	m := mover.New(store, cfg, nil)
	entry, err := m.Move(ctx, "run-1", file, dest, false)
	if !errors.Is(err, mover.ErrDestinationNotOwned) {
		t.Fatalf("err = %v, want ErrDestinationNotOwned", err)
	}
	if entry.State != journal.StateFailed {
		t.Fatalf("state = %v", entry.State)
	}
	if got, _ := os.ReadFile(dest); string(got) != "someone else's file" {
		t.Fatalf("destination clobbered: %q", got)
	}
	if _, err := os.Lstat(file.Path); err != nil {
		t.Fatal("source lost on refused move")
	}
}

func TestMoveOverwriteReplacesDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run-1", cfg.Paths.SourceDir, cfg.Paths.LibraryDir); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	file := newFile(t, filepath.Join(cfg.Paths.SourceDir, "a.jpg"), []byte("new bytes"))
	dest := filepath.Join(cfg.Paths.LibraryDir, "a.jpg")
	testsupport.WriteFileContent(t, dest, []byte("old bytes"))

	m := mover.New(store, cfg, nil)
	entry, err := m.Move(ctx, "run-1", file, dest, true)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if entry.State != journal.StateCommitted {
		t.Fatalf("state = %v", entry.State)
	}
	if got, _ := os.ReadFile(dest); string(got) != "new bytes" {
		t.Fatalf("destination = %q", got)
	}
}

func TestRecoverFinalizesPlacedMove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run-1", cfg.Paths.SourceDir, cfg.Paths.LibraryDir); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	// Crash happened after the rename landed but before the journal saw
	// Verified: destination holds the bytes, source is gone.
	dest := filepath.Join(cfg.Paths.LibraryDir, "a.jpg")
	testsupport.WriteFileContent(t, dest, []byte("payload"))
	src := filepath.Join(cfg.Paths.SourceDir, "a.jpg")

	entry := &journal.Entry{RunID: "run-1", SourcePath: src, DestPath: dest, Size: 7, Strategy: journal.StrategyRename}
	if err := store.Append(ctx, entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Transition(ctx, entry.ID, journal.StatePlanned, journal.StateReserved); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := store.Transition(ctx, entry.ID, journal.StateReserved, journal.StateRenamed); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := store.SetFingerprint(ctx, entry.ID, mustHash(t, dest)); err != nil {
		t.Fatalf("SetFingerprint: %v", err)
	}

	m := mover.New(store, cfg, nil)
	report, err := m.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Finalized != 1 {
		t.Fatalf("report = %+v", report)
	}

	got, _ := store.GetEntry(ctx, entry.ID)
	if got.State != journal.StateCommitted {
		t.Fatalf("state = %v", got.State)
	}
	if _, err := os.Lstat(dest); err != nil {
		t.Fatal("destination missing after finalize")
	}
}

func TestRecoverCleansPartialAndReattempts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run-1", cfg.Paths.SourceDir, cfg.Paths.LibraryDir); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	src := filepath.Join(cfg.Paths.SourceDir, "a.jpg")
	testsupport.WriteFileContent(t, src, []byte("payload"))
	dest := filepath.Join(cfg.Paths.LibraryDir, "a.jpg")
	partial := filepath.Join(cfg.Paths.LibraryDir, ".a.jpg.mediasort-partial")
	testsupport.WriteFileContent(t, partial, []byte("half a pay"))

	entry := &journal.Entry{RunID: "run-1", SourcePath: src, DestPath: dest, Size: 7, Strategy: journal.StrategyCopy}
	if err := store.Append(ctx, entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Transition(ctx, entry.ID, journal.StatePlanned, journal.StateReserved); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := store.SetTempPath(ctx, entry.ID, partial); err != nil {
		t.Fatalf("SetTempPath: %v", err)
	}

	m := mover.New(store, cfg, nil)
	report, err := m.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.PartialsCleaned != 1 || report.Reattempted != 1 {
		t.Fatalf("report = %+v", report)
	}
	if _, err := os.Lstat(partial); !os.IsNotExist(err) {
		t.Fatal("partial survived recovery")
	}
	if got, _ := os.ReadFile(dest); string(got) != "payload" {
		t.Fatalf("destination = %q", got)
	}
	if _, err := os.Lstat(src); !os.IsNotExist(err) {
		t.Fatal("source survived re-attempted move")
	}

	old, _ := store.GetEntry(ctx, entry.ID)
	if old.State != journal.StateFailed {
		t.Fatalf("interrupted entry state = %v", old.State)
	}
	incomplete, err := store.IncompleteEntries(ctx)
	if err != nil {
		t.Fatalf("IncompleteEntries: %v", err)
	}
	if len(incomplete) != 0 {
		t.Fatalf("incomplete after recovery = %+v", incomplete)
	}
}

func TestRecoverFailsUnprovableMove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run-1", cfg.Paths.SourceDir, cfg.Paths.LibraryDir); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	// Source gone, destination occupied by different bytes: not ours.
	src := filepath.Join(cfg.Paths.SourceDir, "a.jpg")
	dest := filepath.Join(cfg.Paths.LibraryDir, "a.jpg")
	testsupport.WriteFileContent(t, dest, []byte("unrelated bytes"))

	entry := &journal.Entry{RunID: "run-1", SourcePath: src, DestPath: dest, Size: 7, Strategy: journal.StrategyCopy, Fingerprint: "deadbeef"}
	if err := store.Append(ctx, entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.SetFingerprint(ctx, entry.ID, "deadbeef"); err != nil {
		t.Fatalf("SetFingerprint: %v", err)
	}

	m := mover.New(store, cfg, nil)
	report, err := m.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if got, _ := os.ReadFile(dest); string(got) != "unrelated bytes" {
		t.Fatalf("destination clobbered: %q", got)
	}
}
