package scan

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"mediasort/internal/config"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/services"
)

// Well-known metadata keys an extractor may populate. The scanner fills the
// derived keys (device, media_type, resolution, original_name) from whatever
// the extractor supplied plus its own classification.
const (
	KeyMake         = "make"
	KeyModel        = "model"
	KeyCaptureTime  = "capture_time"
	KeyWidth        = "width"
	KeyHeight       = "height"
	KeyDevice       = "device"
	KeyMediaType    = "media_type"
	KeyResolution   = "resolution"
	KeyOriginalName = "original_name"
)

// MetadataFunc extracts metadata for one file. Implementations parse
// capture_time as RFC 3339. A nil MetadataFunc means no external metadata;
// the scanner then falls back to filename heuristics and file mtime.
type MetadataFunc func(path string) (map[string]string, error)

// Stats summarizes one scan pass.
type Stats struct {
	TotalFiles  int
	MediaFiles  int
	Unsupported int
	TotalBytes  int64
}

// Result carries the discovered files in deterministic path order.
type Result struct {
	Files []*media.SourceFile
	Stats Stats
}

// Scanner walks a source tree and builds file descriptors for planning.
type Scanner struct {
	cfg      *config.Config
	logger   *slog.Logger
	extract  MetadataFunc
	typeExts typeLists
}

type typeLists struct {
	photo []string
	video []string
	raw   []string
}

func New(cfg *config.Config, logger *slog.Logger, extract MetadataFunc) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cfg:     cfg,
		logger:  logger.With(logging.String(logging.FieldComponent, "scan")),
		extract: extract,
		typeExts: typeLists{
			photo: cfg.Organize.SupportedPhotoExts,
			video: cfg.Organize.SupportedVideoExts,
			raw:   cfg.Organize.SupportedRawExts,
		},
	}
}

// Scan walks the configured source directory. Hidden files and directories
// are skipped; unsupported extensions are counted but not returned. The walk
// itself fails only when the root is unreadable; individual file problems are
// logged and the file skipped.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	root := s.cfg.Paths.SourceDir
	result := &Result{}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return services.Wrap(services.ErrFilesystem, "scan", "walk", "source directory unreadable", walkErr)
			}
			s.logger.Warn("skipping unreadable entry", logging.String(logging.FieldSource, path), logging.Error(walkErr))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		result.Stats.TotalFiles++
		mediaType := media.TypeForExtension(filepath.Ext(name), s.typeExts.photo, s.typeExts.video, s.typeExts.raw)
		if mediaType == media.TypeUnknown {
			result.Stats.Unsupported++
			return nil
		}

		file, err := s.describe(path, entry, mediaType)
		if err != nil {
			s.logger.Warn("skipping file", logging.String(logging.FieldSource, path), logging.Error(err))
			return nil
		}
		result.Files = append(result.Files, file)
		result.Stats.MediaFiles++
		result.Stats.TotalBytes += file.Size
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	s.logger.Info("scan complete",
		logging.Int("media_files", result.Stats.MediaFiles),
		logging.Int("unsupported", result.Stats.Unsupported),
		logging.Int64("total_bytes", result.Stats.TotalBytes))
	return result, nil
}

func (s *Scanner) describe(path string, entry fs.DirEntry, mediaType media.Type) (*media.SourceFile, error) {
	info, err := entry.Info()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "scan", "stat", "cannot stat file", err)
	}

	metadata := map[string]string{}
	if s.extract != nil {
		extracted, err := s.extract(path)
		if err != nil {
			// Metadata is advisory; a failed extractor degrades to
			// filename and mtime heuristics.
			s.logger.Debug("metadata extraction failed", logging.String(logging.FieldSource, path), logging.Error(err))
		}
		for key, value := range extracted {
			metadata[key] = value
		}
	}

	base := filepath.Base(path)
	device := media.ClassifyDevice(metadata[KeyMake], metadata[KeyModel], base)
	metadata[KeyDevice] = string(device)
	metadata[KeyMediaType] = string(mediaType)
	if _, ok := metadata[KeyOriginalName]; !ok {
		metadata[KeyOriginalName] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if _, ok := metadata[KeyResolution]; !ok {
		metadata[KeyResolution] = media.ResolutionLabel(
			parseDimension(metadata[KeyWidth]),
			parseDimension(metadata[KeyHeight]))
	}

	captureTime := info.ModTime()
	if raw, ok := metadata[KeyCaptureTime]; ok {
		if parsed, err := parseCaptureTime(raw); err == nil {
			captureTime = parsed
		}
	}

	return &media.SourceFile{
		Path:        path,
		Size:        info.Size(),
		Type:        mediaType,
		Device:      device,
		Metadata:    metadata,
		CaptureTime: captureTime,
	}, nil
}
