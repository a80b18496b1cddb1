package plan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mediasort/internal/config"
	"mediasort/internal/dedupe"
	"mediasort/internal/fileutil"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/naming"
	"mediasort/internal/services"
)

// Item is one planned move: a source file bound to a conflict-free
// destination path.
type Item struct {
	File     *media.SourceFile
	DestPath string
	Sequence int
	// Overwrite marks a destination occupied on disk that the overwrite
	// policy reserved anyway.
	Overwrite bool
}

// Exclusion records a file the plan leaves in place, with the manifest reason.
type Exclusion struct {
	File   *media.SourceFile
	Reason string
}

// Plan is the finalized, conflict-free source-to-destination mapping. No
// filesystem mutation has happened when a Plan is returned.
type Plan struct {
	Items        []*Item
	Excluded     []Exclusion
	Reservations *Reservations
}

// Builder compiles the configured templates once and turns scanned files
// into Plans. Building is single-threaded; the reservation set needs a
// globally consistent view.
type Builder struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *naming.Registry
	nameTmpl   *naming.Template
	folderTmpl []*naming.Template
	policy     dedupe.Policy
	comparator dedupe.QualityComparator
}

// NewBuilder validates configuration and compiles both templates against the
// default variable registry. Template errors surface here, before any file
// is touched.
func NewBuilder(cfg *config.Config, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := naming.DefaultRegistry(cfg)

	nameTmpl, err := naming.Compile(cfg.Organize.NamingTemplate, registry)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "plan", "compile", "naming template invalid", err)
	}

	// Folder path separators are literal: each segment is its own template
	// so a variable value can never smuggle in extra path components.
	var folderTmpl []*naming.Template
	for _, segment := range strings.Split(cfg.Organize.FolderTemplate, "/") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		compiled, err := naming.Compile(segment, registry)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "plan", "compile", "folder template invalid", err)
		}
		folderTmpl = append(folderTmpl, compiled)
	}

	policy, err := dedupe.ParsePolicy(cfg.Duplicates.Policy)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "configure", "duplicate policy invalid", err)
	}

	return &Builder{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "plan")),
		registry:   registry,
		nameTmpl:   nameTmpl,
		folderTmpl: folderTmpl,
		policy:     policy,
	}, nil
}

// SetQualityComparator supplies the external ranking used by the
// quality_selection policy. Without one the deterministic representative
// rule applies.
func (b *Builder) SetQualityComparator(compare dedupe.QualityComparator) {
	b.comparator = compare
}

// Registry exposes the variable registry the builder compiled against.
func (b *Builder) Registry() *naming.Registry {
	return b.registry
}

// Build produces a Plan for the given files. It fails fast, before any disk
// mutation, when any file cannot be named at all; per-file conditions that
// leave the source in place (duplicates, occupied destinations, unreadable
// content) become Exclusions instead.
func (b *Builder) Build(ctx context.Context, files []*media.SourceFile, now time.Time) (*Plan, error) {
	if now.IsZero() {
		now = time.Now()
	}

	result := &Plan{Reservations: NewReservations(b.cfg.Organize.CaseInsensitive)}
	skip := make(map[*media.SourceFile]string)

	groups, hashFailed := dedupe.Detect(files)
	for file, err := range hashFailed {
		skip[file] = fmt.Sprintf("unreadable: %v", err)
	}
	b.applyDuplicatePolicy(groups, skip)

	ordered := orderForSequencing(files)
	resolver := &resolver{
		reservations: result.Reservations,
		existsOnDisk: fileExists,
		token:        b.cfg.Organize.ConflictToken,
		cap:          b.cfg.Organize.ConflictCap,
	}

	sequence := b.cfg.Organize.SequenceStart
	for _, file := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if reason, excluded := skip[file]; excluded {
			result.Excluded = append(result.Excluded, Exclusion{File: file, Reason: reason})
			continue
		}

		candidate, err := b.renderDestination(file, now, sequence)
		if err != nil {
			// Naming failures are plan-fatal: an unresolvable template
			// would misname every file the same way.
			return nil, err
		}
		item, exclusion, err := b.placeFile(resolver, file, candidate)
		if err != nil {
			return nil, err
		}
		if exclusion != nil {
			result.Excluded = append(result.Excluded, *exclusion)
		}
		if item != nil {
			item.Sequence = sequence
			result.Items = append(result.Items, item)
		}
		sequence++
	}

	b.logger.Info("plan built",
		logging.Int("planned", len(result.Items)),
		logging.Int("excluded", len(result.Excluded)))
	return result, nil
}

func (b *Builder) applyDuplicatePolicy(groups []dedupe.Group, skip map[*media.SourceFile]string) {
	if b.policy == dedupe.PolicyVersion {
		return
	}
	for _, group := range groups {
		representative := group.Representative()
		if b.policy == dedupe.PolicyQuality {
			representative = group.RepresentativeBy(b.comparator)
		}
		for _, member := range group.Files {
			if member == representative {
				continue
			}
			if _, taken := skip[member]; taken {
				continue
			}
			skip[member] = fmt.Sprintf("duplicate of %s", representative.Path)
		}
	}
}

func (b *Builder) renderDestination(file *media.SourceFile, now time.Time, sequence int) (string, error) {
	renderCtx := &naming.Context{
		User:            b.userFields(),
		Metadata:        file.Metadata,
		Now:             now,
		Sequence:        sequence,
		SequencePadding: b.cfg.Organize.SequencePadding,
	}
	maxBytes := b.cfg.Organize.MaxComponentBytes

	name, err := naming.Render(b.nameTmpl, b.registry, renderCtx, maxBytes)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "plan", "render",
			fmt.Sprintf("cannot name %s", file.Path), err)
	}

	components := make([]string, 0, len(b.folderTmpl)+1)
	components = append(components, b.cfg.Paths.LibraryDir)
	for _, segment := range b.folderTmpl {
		rendered, err := naming.Render(segment, b.registry, renderCtx, maxBytes)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, "plan", "render",
				fmt.Sprintf("cannot place %s", file.Path), err)
		}
		components = append(components, rendered)
	}
	// The extension lands after rendering, so the component limit applies
	// once more to the finished basename.
	base := naming.TruncateComponent(name+strings.ToLower(filepath.Ext(file.Path)), maxBytes)
	components = append(components, base)
	return filepath.Join(components...), nil
}

func (b *Builder) placeFile(resolver *resolver, file *media.SourceFile, candidate string) (*Item, *Exclusion, error) {
	sameContent := func(path string) bool { return contentMatches(file, path) }

	switch b.cfg.Organize.ExistingPolicy {
	case config.ExistingPolicySkip:
		if resolver.onDisk(candidate) {
			if sameContent(candidate) {
				return nil, &Exclusion{File: file, Reason: "already organized"}, nil
			}
			return nil, &Exclusion{File: file, Reason: fmt.Sprintf("%v: %s", ErrDestinationExists, candidate)}, nil
		}
		resolved, _, err := resolver.resolve(candidate, nil)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "plan", "reserve", "cannot reserve destination", err)
		}
		return &Item{File: file, DestPath: resolved}, nil, nil

	case config.ExistingPolicyOverwrite:
		if resolver.onDisk(candidate) && sameContent(candidate) {
			return nil, &Exclusion{File: file, Reason: "already organized"}, nil
		}
		if err := resolver.reserveExact(candidate); err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "plan", "reserve", "cannot reserve destination", err)
		}
		overwrite := resolver.onDisk(candidate)
		return &Item{File: file, DestPath: candidate, Overwrite: overwrite}, nil, nil

	default: // version
		resolved, satisfied, err := resolver.resolve(candidate, sameContent)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "plan", "reserve", "cannot reserve destination", err)
		}
		if satisfied {
			return nil, &Exclusion{File: file, Reason: "already organized"}, nil
		}
		return &Item{File: file, DestPath: resolved}, nil, nil
	}
}

func (b *Builder) userFields() map[string]string {
	fields := make(map[string]string, len(b.cfg.User.Extra)+2)
	for name, value := range b.cfg.User.Extra {
		fields[name] = value
	}
	if b.cfg.User.EventName != "" {
		fields["event_name"] = b.cfg.User.EventName
	}
	if b.cfg.User.ArtistNames != "" {
		fields["artist_names"] = b.cfg.User.ArtistNames
	}
	return fields
}

// orderForSequencing fixes the order sequence numbers are assigned in:
// capture time ascending, unknown capture times last, ties by path. The
// order must not depend on scan or hashing order or re-runs would renumber.
func orderForSequencing(files []*media.SourceFile) []*media.SourceFile {
	ordered := make([]*media.SourceFile, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.CaptureTime.IsZero() && !b.CaptureTime.IsZero():
			return false
		case !a.CaptureTime.IsZero() && b.CaptureTime.IsZero():
			return true
		case !a.CaptureTime.Equal(b.CaptureTime):
			return a.CaptureTime.Before(b.CaptureTime)
		default:
			return a.Path < b.Path
		}
	})
	return ordered
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// contentMatches reports whether a disk occupant is byte-identical to the
// source. Size mismatch short-circuits before hashing.
func contentMatches(file *media.SourceFile, path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() != file.Size {
		return false
	}
	sourceSum, err := file.Fingerprint()
	if err != nil {
		return false
	}
	destSum, err := fileutil.HashFile(path)
	if err != nil {
		return false
	}
	return sourceSum == destSum
}
