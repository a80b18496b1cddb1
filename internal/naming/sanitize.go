package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// invalidComponentChars is the union of Windows-reserved filename characters;
// organized trees must stay portable across filesystem families.
const invalidComponentChars = `<>:"/\|?*`

// Sanitize makes a rendered string safe as a single path component: reserved
// and control characters become underscores, spaces become underscores,
// repeated separators collapse, and the result is truncated to maxBytes while
// preserving any extension. An empty result yields ErrEmptyFilename.
func Sanitize(name string, maxBytes int) (string, error) {
	var out strings.Builder
	out.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20, strings.ContainsRune(invalidComponentChars, r):
			out.WriteByte('_')
		case r == ' ':
			out.WriteByte('_')
		default:
			out.WriteRune(r)
		}
	}

	cleaned := collapseSeparators(out.String())
	cleaned = strings.Trim(cleaned, "_")
	cleaned = strings.TrimRight(cleaned, ". ")

	if maxBytes > 0 && len(cleaned) > maxBytes {
		cleaned = truncateComponent(cleaned, maxBytes)
	}

	if cleaned == "" {
		return "", fmt.Errorf("%w: sanitized name is empty", ErrEmptyFilename)
	}
	return cleaned, nil
}

// TruncateComponent shortens a finished path component, extension included,
// to maxBytes while keeping the extension intact. Callers that append an
// extension after rendering use this to re-apply the component limit.
// maxBytes <= 0 means no limit.
func TruncateComponent(name string, maxBytes int) string {
	if maxBytes <= 0 || len(name) <= maxBytes {
		return name
	}
	return truncateComponent(name, maxBytes)
}

func collapseSeparators(name string) string {
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return name
}

// truncateComponent shortens a component to maxBytes without splitting a
// multi-byte rune, keeping the extension intact.
func truncateComponent(name string, maxBytes int) string {
	ext := filepath.Ext(name)
	if len(ext) >= maxBytes {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	budget := maxBytes - len(ext)
	for budget > 0 && budget < len(stem) {
		if isRuneStart(stem[budget]) {
			break
		}
		budget--
	}
	if budget < len(stem) {
		stem = stem[:budget]
	}
	stem = strings.TrimRight(stem, "_. ")
	return stem + ext
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
