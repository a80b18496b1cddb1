package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"mediasort/internal/media"
)

// Policy selects how duplicate groups are handled during planning.
type Policy string

const (
	// PolicySkip keeps only the representative; other members are excluded.
	PolicySkip Policy = "skip_duplicates"
	// PolicyVersion names every member, disambiguated by the conflict resolver.
	PolicyVersion Policy = "version_naming"
	// PolicyQuality keeps the best member per an external quality comparator.
	PolicyQuality Policy = "quality_selection"
	// PolicyArchive moves non-representative members to an archive location.
	PolicyArchive Policy = "archive_duplicates"
)

// ParsePolicy converts a configuration string into a known Policy.
func ParsePolicy(value string) (Policy, error) {
	normalized := Policy(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case PolicySkip, PolicyVersion, PolicyQuality, PolicyArchive:
		return normalized, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", value)
	}
}

// QualityComparator ranks two files for PolicyQuality; it returns a positive
// value when a outranks b. Supplied by an external collaborator.
type QualityComparator func(a, b *media.SourceFile) int

// Group is a set of source files sharing one content fingerprint. Files are
// held in deterministic order: ascending capture timestamp, ties broken by
// ascending source path, so output is reproducible regardless of hashing
// order.
type Group struct {
	Fingerprint string
	Files       []*media.SourceFile
}

// Representative returns the canonical member of the group under the
// deterministic ordering rule.
func (g *Group) Representative() *media.SourceFile {
	if len(g.Files) == 0 {
		return nil
	}
	return g.Files[0]
}

// RepresentativeBy returns the member preferred by the comparator, falling
// back to the deterministic representative when no comparator is supplied or
// the comparison ties.
func (g *Group) RepresentativeBy(compare QualityComparator) *media.SourceFile {
	best := g.Representative()
	if compare == nil || best == nil {
		return best
	}
	for _, candidate := range g.Files[1:] {
		if compare(candidate, best) > 0 {
			best = candidate
		}
	}
	return best
}

// Detect groups source files by content fingerprint. Every file is hashed
// (reusing the per-run fingerprint cache); files whose content cannot be read
// are reported in failed and excluded from grouping. Only groups with more
// than one member are returned.
func Detect(files []*media.SourceFile) (groups []Group, failed map[*media.SourceFile]error) {
	failed = make(map[*media.SourceFile]error)
	byFingerprint := make(map[string][]*media.SourceFile)

	for _, file := range files {
		sum, err := file.Fingerprint()
		if err != nil {
			failed[file] = err
			continue
		}
		byFingerprint[sum] = append(byFingerprint[sum], file)
	}

	for sum, members := range byFingerprint {
		if len(members) < 2 {
			continue
		}
		sortMembers(members)
		groups = append(groups, Group{Fingerprint: sum, Files: members})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Fingerprint < groups[j].Fingerprint
	})
	return groups, failed
}

func sortMembers(members []*media.SourceFile) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
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
}
