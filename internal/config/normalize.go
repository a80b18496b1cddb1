package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	c.normalizeDuplicates()
	c.normalizeWorkers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalDir) == "" {
		c.Paths.JournalDir = defaultJournalDir
	}
	if c.Paths.JournalDir, err = expandPath(c.Paths.JournalDir); err != nil {
		return fmt.Errorf("paths.journal_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	c.Organize.NamingTemplate = strings.TrimSpace(c.Organize.NamingTemplate)
	if c.Organize.NamingTemplate == "" {
		c.Organize.NamingTemplate = defaultNamingTemplate
	}
	c.Organize.FolderTemplate = strings.TrimSpace(c.Organize.FolderTemplate)
	c.Organize.ExistingPolicy = strings.ToLower(strings.TrimSpace(c.Organize.ExistingPolicy))
	if c.Organize.ExistingPolicy == "" {
		c.Organize.ExistingPolicy = defaultExistingPolicy
	}
	if c.Organize.ConflictToken == "" {
		c.Organize.ConflictToken = defaultConflictToken
	}
	if c.Organize.ConflictCap <= 0 {
		c.Organize.ConflictCap = defaultConflictCap
	}
	if c.Organize.MaxComponentBytes <= 0 {
		c.Organize.MaxComponentBytes = defaultMaxComponentBytes
	}
	if c.Organize.CopyRetryLimit < 0 {
		c.Organize.CopyRetryLimit = defaultCopyRetryLimit
	}
	if c.Organize.SequenceStart <= 0 {
		c.Organize.SequenceStart = defaultSequenceStart
	}
	if c.Organize.SequencePadding <= 0 {
		c.Organize.SequencePadding = defaultSequencePadding
	}
	c.Organize.SupportedPhotoExts = normalizeExts(c.Organize.SupportedPhotoExts, defaultPhotoExts)
	c.Organize.SupportedVideoExts = normalizeExts(c.Organize.SupportedVideoExts, defaultVideoExts)
	c.Organize.SupportedRawExts = normalizeExts(c.Organize.SupportedRawExts, defaultRawExts)
}

func normalizeExts(values, fallback []string) []string {
	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

func (c *Config) normalizeDuplicates() {
	c.Duplicates.Policy = strings.ToLower(strings.TrimSpace(c.Duplicates.Policy))
	if c.Duplicates.Policy == "" {
		c.Duplicates.Policy = defaultDuplicatePolicy
	}
}

func (c *Config) normalizeWorkers() {
	if c.Workers.HashWorkers <= 0 {
		c.Workers.HashWorkers = defaultHashWorkers
	}
	if c.Workers.MoveWorkers <= 0 {
		c.Workers.MoveWorkers = defaultMoveWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
