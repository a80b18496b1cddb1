package batch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mediasort/internal/media"
	"mediasort/internal/mover"
	"mediasort/internal/plan"
	"mediasort/internal/testsupport"
)

// A journal that stops accepting writes must abort the pool cleanly. The
// failure mode guarded here: the last live worker hits the journal error
// while the dispatcher is blocked sending the next item, which hung the
// batch before workers learned to drain the channel.
func TestMoveAllAbortsWhenJournalStopsAcceptingWrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workers.MoveWorkers = 1
	store := testsupport.MustOpenJournal(t, cfg)

	coordinator, err := New(cfg, store, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var items []*plan.Item
	for _, name := range []string{"a.jpg", "b.jpg"} {
		path := filepath.Join(cfg.Paths.SourceDir, name)
		testsupport.WriteFileContent(t, path, []byte(name))
		items = append(items, &plan.Item{
			File:     &media.SourceFile{Path: path, Size: int64(len(name)), Type: media.TypePhoto},
			DestPath: filepath.Join(cfg.Paths.LibraryDir, name),
		})
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	type result struct {
		failed int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		failed, err := coordinator.moveAll(context.Background(), "run-journal-down", items)
		done <- result{failed, err}
	}()

	select {
	case got := <-done:
		if !errors.Is(got.err, mover.ErrJournalWrite) {
			t.Fatalf("moveAll error = %v, want ErrJournalWrite", got.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("moveAll did not return after the journal stopped accepting writes")
	}
}
