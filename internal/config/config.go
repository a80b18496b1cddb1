package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	JournalDir string `toml:"journal_dir"`
}

// Organize contains naming and conflict-resolution configuration.
type Organize struct {
	NamingTemplate     string `toml:"naming_template"`
	FolderTemplate     string `toml:"folder_template"`
	ExistingPolicy     string `toml:"existing_policy"` // skip | version | overwrite
	ConflictToken      string `toml:"conflict_token"`
	ConflictCap        int    `toml:"conflict_cap"`
	CaseInsensitive    bool   `toml:"case_insensitive"`
	ConfirmOverwrite   bool   `toml:"confirm_overwrite"`
	MaxComponentBytes  int    `toml:"max_component_bytes"`
	CopyRetryLimit     int    `toml:"copy_retry_limit"`
	SequenceStart      int    `toml:"sequence_start"`
	SequencePadding    int    `toml:"sequence_padding"`
	SupportedPhotoExts []string `toml:"supported_photo_exts"`
	SupportedVideoExts []string `toml:"supported_video_exts"`
	SupportedRawExts   []string `toml:"supported_raw_exts"`
}

// Duplicates contains duplicate detection configuration.
type Duplicates struct {
	Policy string `toml:"policy"` // skip_duplicates | version_naming | quality_selection | archive_duplicates
}

// Workers contains worker pool sizing for hashing and moving.
type Workers struct {
	HashWorkers int `toml:"hash_workers"`
	MoveWorkers int `toml:"move_workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// User contains the user-supplied naming fields for a run. Values here feed
// the user-input variable resolution tier and override file metadata.
type User struct {
	EventName   string            `toml:"event_name"`
	ArtistNames string            `toml:"artist_names"`
	Extra       map[string]string `toml:"extra"`
}

// Venue describes the configuration-sourced venue variables available to
// naming templates (location, city, venue, venue_short).
type Venue struct {
	Name      string `toml:"name"`
	Location  string `toml:"location"`
	City      string `toml:"city"`
	State     string `toml:"state"`
	ShortName string `toml:"short_name"`
}

// Config encapsulates all configuration values for mediasort.
//
// Configuration sections by subsystem:
//   - Paths: source dump, library root, journal and log directories
//   - Organize: naming/folder templates, conflict and sanitization knobs
//   - Duplicates: duplicate handling policy
//   - Workers: hashing and moving concurrency
//   - User: per-run user-supplied naming fields
//   - Venue: venue variables exposed to templates
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Organize   Organize   `toml:"organize"`
	Duplicates Duplicates `toml:"duplicates"`
	Workers    Workers    `toml:"workers"`
	User       User       `toml:"user"`
	Venue      Venue      `toml:"venue"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediasort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediasort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a batch run needs.
// LibraryDir is created on a best-effort basis so planning can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.JournalDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
