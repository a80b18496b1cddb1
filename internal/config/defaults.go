package config

const (
	defaultSourceDir         = "~/media/incoming"
	defaultLibraryDir        = "~/media/library"
	defaultLogDir            = "~/.local/share/mediasort/logs"
	defaultJournalDir        = "~/.local/share/mediasort/journal"
	defaultNamingTemplate    = "{event_name}_{date}_{sequence:03d}"
	defaultFolderTemplate    = "{event_name}/{date}"
	defaultExistingPolicy    = "version"
	defaultConflictToken     = "_v"
	defaultConflictCap       = 9999
	defaultMaxComponentBytes = 255
	defaultCopyRetryLimit    = 1
	defaultSequenceStart     = 1
	defaultSequencePadding   = 3
	defaultDuplicatePolicy   = "version_naming"
	defaultHashWorkers       = 4
	defaultMoveWorkers       = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

var (
	defaultPhotoExts = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".webp", ".heic", ".heif"}
	defaultVideoExts = []string{".mp4", ".mov", ".avi", ".mkv", ".m4v", ".mts", ".m2ts"}
	defaultRawExts   = []string{".cr2", ".cr3", ".nef", ".nrw", ".arw", ".dng", ".raf", ".orf", ".rw2"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			JournalDir: defaultJournalDir,
		},
		Organize: Organize{
			NamingTemplate:     defaultNamingTemplate,
			FolderTemplate:     defaultFolderTemplate,
			ExistingPolicy:     defaultExistingPolicy,
			ConflictToken:      defaultConflictToken,
			ConflictCap:        defaultConflictCap,
			CaseInsensitive:    false,
			MaxComponentBytes:  defaultMaxComponentBytes,
			CopyRetryLimit:     defaultCopyRetryLimit,
			SequenceStart:      defaultSequenceStart,
			SequencePadding:    defaultSequencePadding,
			SupportedPhotoExts: append([]string(nil), defaultPhotoExts...),
			SupportedVideoExts: append([]string(nil), defaultVideoExts...),
			SupportedRawExts:   append([]string(nil), defaultRawExts...),
		},
		Duplicates: Duplicates{
			Policy: defaultDuplicatePolicy,
		},
		Workers: Workers{
			HashWorkers: defaultHashWorkers,
			MoveWorkers: defaultMoveWorkers,
		},
		Venue: Venue{
			Name:      "Suite E Studios",
			Location:  "Historic Warehouse Arts District",
			City:      "St Petersburg",
			State:     "FL",
			ShortName: "SuiteE",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
