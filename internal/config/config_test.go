package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasort/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantJournal := filepath.Join(tempHome, ".local", "share", "mediasort", "journal")
	if cfg.Paths.JournalDir != wantJournal {
		t.Fatalf("unexpected journal dir: got %q want %q", cfg.Paths.JournalDir, wantJournal)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "media", "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Organize.NamingTemplate != "{event_name}_{date}_{sequence:03d}" {
		t.Fatalf("unexpected naming template: %q", cfg.Organize.NamingTemplate)
	}
	if cfg.Organize.ExistingPolicy != "version" {
		t.Fatalf("expected default existing policy version, got %q", cfg.Organize.ExistingPolicy)
	}
	if cfg.Organize.ConflictCap != 9999 {
		t.Fatalf("unexpected conflict cap: %d", cfg.Organize.ConflictCap)
	}
	if cfg.Duplicates.Policy != "version_naming" {
		t.Fatalf("unexpected duplicate policy: %q", cfg.Duplicates.Policy)
	}
	if cfg.Workers.HashWorkers != 4 || cfg.Workers.MoveWorkers != 2 {
		t.Fatalf("unexpected worker defaults: %+v", cfg.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`source_dir = "` + filepath.Join(dir, "in") + `"`,
		`library_dir = "` + filepath.Join(dir, "out") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`journal_dir = "` + filepath.Join(dir, "journal") + `"`,
		"[organize]",
		`existing_policy = "SKIP"`,
		`supported_photo_exts = ["JPG", "jpeg", ""]`,
		"[duplicates]",
		`policy = "Skip_Duplicates"`,
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Organize.ExistingPolicy != "skip" {
		t.Fatalf("expected lowercased policy, got %q", cfg.Organize.ExistingPolicy)
	}
	if got := cfg.Organize.SupportedPhotoExts; len(got) != 2 || got[0] != ".jpg" || got[1] != ".jpeg" {
		t.Fatalf("unexpected photo extensions: %v", got)
	}
	if cfg.Duplicates.Policy != "skip_duplicates" {
		t.Fatalf("expected normalized duplicate policy, got %q", cfg.Duplicates.Policy)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadPolicies(t *testing.T) {
	cfg := config.Default()
	cfg.Organize.ExistingPolicy = "rename"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown existing policy")
	}

	cfg = config.Default()
	cfg.Duplicates.Policy = "fuzzy"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown duplicate policy")
	}

	cfg = config.Default()
	cfg.Organize.ExistingPolicy = "overwrite"
	cfg.Organize.ConfirmOverwrite = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected overwrite without confirmation to fail validation")
	}
	cfg.Organize.ConfirmOverwrite = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected confirmed overwrite to validate: %v", err)
	}
}

func TestEnsureDirectoriesCreatesJournalAndLogDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.JournalDir = filepath.Join(dir, "journal")
	cfg.Paths.LibraryDir = filepath.Join(dir, "library")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{"logs", "journal", "library"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", sub, err)
		}
	}
}
