package testsupport

import (
	"path/filepath"
	"testing"

	"mediasort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "incoming")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.JournalDir = filepath.Join(base, "journal")
	cfgVal.User.EventName = "Test Event"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithEventName overrides the user-supplied event name on the test config.
func WithEventName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.User.EventName = name
	}
}

// WithNamingTemplate overrides the file naming template on the test config.
func WithNamingTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.NamingTemplate = template
	}
}

// WithFolderTemplate overrides the folder placement template.
func WithFolderTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.FolderTemplate = template
	}
}

// WithExistingPolicy sets the pre-existing destination policy.
func WithExistingPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.ExistingPolicy = policy
	}
}

// WithDuplicatePolicy sets the duplicate handling policy.
func WithDuplicatePolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Duplicates.Policy = policy
	}
}

// Customize applies an arbitrary mutation to the test config.
func Customize(mutate func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		mutate(b.cfg)
	}
}
