package plan

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediasort/internal/config"
	"mediasort/internal/media"
	"mediasort/internal/testsupport"
)

var planTime = time.Date(2025, 8, 23, 20, 0, 0, 0, time.UTC)

func sourceFiles(t *testing.T, dir string, names ...string) []*media.SourceFile {
	t.Helper()
	files := make([]*media.SourceFile, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		content := []byte(name + " content")
		testsupport.WriteFileContent(t, path, content)
		files = append(files, &media.SourceFile{
			Path:        path,
			Size:        int64(len(content)),
			Type:        media.TypePhoto,
			Metadata:    map[string]string{"original_name": strings.TrimSuffix(name, filepath.Ext(name))},
			CaptureTime: planTime.Add(time.Duration(i) * time.Minute),
		})
	}
	return files
}

func TestBuildScenarioSequencedNames(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithEventName("Final Friday March"),
		testsupport.WithNamingTemplate("{event_name}_{date}_{sequence:03d}"),
		testsupport.WithFolderTemplate("{event_name}"),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "a.jpg", "b.jpg", "c.jpg")

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 3 || len(result.Excluded) != 0 {
		t.Fatalf("items=%d excluded=%d", len(result.Items), len(result.Excluded))
	}

	want := []string{
		"Final_Friday_March_2025-08-23_001.jpg",
		"Final_Friday_March_2025-08-23_002.jpg",
		"Final_Friday_March_2025-08-23_003.jpg",
	}
	for i, item := range result.Items {
		if got := filepath.Base(item.DestPath); got != want[i] {
			t.Errorf("item %d = %q, want %q", i, got, want[i])
		}
		if dir := filepath.Dir(item.DestPath); dir != filepath.Join(cfg.Paths.LibraryDir, "Final_Friday_March") {
			t.Errorf("item %d dir = %q", i, dir)
		}
	}
}

func TestBuildVersionsCollidingNames(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{original_name}"),
		testsupport.WithFolderTemplate("{event_name}"),
	)
	src := cfg.Paths.SourceDir
	files := sourceFiles(t, src, "one.jpg", "two.jpg")
	// Both render to the same stem.
	files[0].Metadata["original_name"] = "IMG_001"
	files[1].Metadata["original_name"] = "IMG_001"

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d", len(result.Items))
	}
	if got := filepath.Base(result.Items[0].DestPath); got != "IMG_001.jpg" {
		t.Errorf("first = %q", got)
	}
	if got := filepath.Base(result.Items[1].DestPath); got != "IMG_001_v1.jpg" {
		t.Errorf("second = %q", got)
	}
}

func TestBuildCaseInsensitiveUniqueness(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{original_name}"),
		testsupport.WithFolderTemplate("{event_name}"),
		testsupport.Customize(func(c *config.Config) { c.Organize.CaseInsensitive = true }),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "one.jpg", "two.jpg")
	files[0].Metadata["original_name"] = "Clip"
	files[1].Metadata["original_name"] = "clip"

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seen := map[string]bool{}
	for _, item := range result.Items {
		key := strings.ToLower(item.DestPath)
		if seen[key] {
			t.Fatalf("case-insensitive collision at %s", item.DestPath)
		}
		seen[key] = true
	}
}

func TestBuildSkipDuplicatesKeepsRepresentative(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{original_name}_{sequence}"),
		testsupport.WithFolderTemplate("{event_name}"),
		testsupport.WithDuplicatePolicy("skip_duplicates"),
	)
	src := cfg.Paths.SourceDir
	first := filepath.Join(src, "a.jpg")
	second := filepath.Join(src, "b.jpg")
	testsupport.WriteFileContent(t, first, []byte("same bytes"))
	testsupport.WriteFileContent(t, second, []byte("same bytes"))

	files := []*media.SourceFile{
		{Path: first, Size: 10, Type: media.TypePhoto, Metadata: map[string]string{"original_name": "a"}, CaptureTime: planTime},
		{Path: second, Size: 10, Type: media.TypePhoto, Metadata: map[string]string{"original_name": "b"}, CaptureTime: planTime.Add(time.Hour)},
	}

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].File.Path != first {
		t.Fatalf("representative not kept: %+v", result.Items)
	}
	if len(result.Excluded) != 1 || !strings.Contains(result.Excluded[0].Reason, "duplicate of") {
		t.Fatalf("exclusions = %+v", result.Excluded)
	}
}

func TestBuildIdempotentRerun(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{original_name}"),
		testsupport.WithFolderTemplate("{event_name}"),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "shot.jpg")

	// Simulate the previous run's committed output.
	dest := filepath.Join(cfg.Paths.LibraryDir, "Test_Event", "shot.jpg")
	testsupport.WriteFileContent(t, dest, []byte("shot.jpg content"))

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("identical destination re-planned: %+v", result.Items)
	}
	if len(result.Excluded) != 1 || result.Excluded[0].Reason != "already organized" {
		t.Fatalf("exclusions = %+v", result.Excluded)
	}
}

func TestBuildVersionsPastOccupiedDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{original_name}"),
		testsupport.WithFolderTemplate("{event_name}"),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "shot.jpg")

	// Occupied by a different file.
	dest := filepath.Join(cfg.Paths.LibraryDir, "Test_Event", "shot.jpg")
	testsupport.WriteFileContent(t, dest, []byte("other content entirely"))

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %+v", result.Items)
	}
	if got := filepath.Base(result.Items[0].DestPath); got != "shot_v1.jpg" {
		t.Fatalf("dest = %q", got)
	}
}

func TestBuildSkipPolicyExcludesOccupied(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{original_name}"),
		testsupport.WithFolderTemplate("{event_name}"),
		testsupport.WithExistingPolicy("skip"),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "shot.jpg")
	dest := filepath.Join(cfg.Paths.LibraryDir, "Test_Event", "shot.jpg")
	testsupport.WriteFileContent(t, dest, []byte("other content entirely"))

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 0 || len(result.Excluded) != 1 {
		t.Fatalf("items=%d excluded=%+v", len(result.Items), result.Excluded)
	}
	if !strings.Contains(result.Excluded[0].Reason, "destination exists") {
		t.Fatalf("reason = %q", result.Excluded[0].Reason)
	}
}

func TestBuildFailsFastOnUnresolvableTemplate(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithEventName(""),
		testsupport.WithNamingTemplate("{event_name}_{sequence}"),
		testsupport.WithFolderTemplate("{date}"),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "shot.jpg")

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := builder.Build(context.Background(), files, planTime); err == nil {
		t.Fatal("Build succeeded with required variable missing")
	}
}

func TestNewBuilderRejectsUnknownVariable(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNamingTemplate("{no_such_variable}"),
	)
	if _, err := NewBuilder(cfg, nil); err == nil {
		t.Fatal("NewBuilder accepted template with undeclared variable")
	}
}

func TestResolverExhaustsAtCap(t *testing.T) {
	reservations := NewReservations(false)
	r := &resolver{reservations: reservations, token: "_v", cap: 3}

	for i := 0; i < 5; i++ {
		_, _, err := r.resolve("/lib/IMG.jpg", nil)
		if i < 4 {
			if err != nil {
				t.Fatalf("resolve %d: %v", i, err)
			}
			continue
		}
		if !errors.Is(err, ErrConflictExhausted) {
			t.Fatalf("err = %v, want ErrConflictExhausted", err)
		}
	}
}

func TestBuildClampsBasenameWithExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithEventName(strings.Repeat("Very Long Event Name ", 20)),
		testsupport.WithNamingTemplate("{event_name}_{sequence:03d}"),
		testsupport.WithFolderTemplate("{date}"),
	)
	files := sourceFiles(t, cfg.Paths.SourceDir, "a.jpg")

	builder, err := NewBuilder(cfg, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	result, err := builder.Build(context.Background(), files, planTime)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d", len(result.Items))
	}

	base := filepath.Base(result.Items[0].DestPath)
	if got, limit := len(base), cfg.Organize.MaxComponentBytes; got > limit {
		t.Fatalf("basename is %d bytes, exceeds limit %d: %q", got, limit, base)
	}
	if !strings.HasSuffix(base, ".jpg") {
		t.Fatalf("truncation lost the extension: %q", base)
	}
}
