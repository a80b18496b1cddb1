package media

import (
	"sync"
	"time"

	"mediasort/internal/fileutil"
)

// SourceFile describes one file awaiting organization. The descriptor is
// immutable after creation except for the lazily computed content
// fingerprint, which is cached and never recomputed within a run.
type SourceFile struct {
	Path string
	Size int64
	Type Type
	// Device is the optional device tag derived from metadata.
	Device DeviceKind
	// Metadata carries the resolved variable values supplied by external
	// metadata extraction (capture timestamp, resolution, original name...).
	Metadata map[string]string
	// CaptureTime orders duplicate-group members; zero when unknown.
	CaptureTime time.Time

	mu          sync.Mutex
	fingerprint string
}

// Fingerprint returns the SHA-256 content fingerprint, reading the full file
// on first use and caching the result for the remainder of the run.
func (f *SourceFile) Fingerprint() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fingerprint != "" {
		return f.fingerprint, nil
	}
	sum, err := fileutil.HashFile(f.Path)
	if err != nil {
		return "", err
	}
	f.fingerprint = sum
	return sum, nil
}

// CachedFingerprint returns the fingerprint if it has already been computed.
func (f *SourceFile) CachedFingerprint() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fingerprint, f.fingerprint != ""
}

// SetFingerprint seeds the cache, used when an external collaborator already
// hashed the file.
func (f *SourceFile) SetFingerprint(sum string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fingerprint == "" && sum != "" {
		f.fingerprint = sum
	}
}

// MetadataValue returns a metadata bag entry.
func (f *SourceFile) MetadataValue(key string) (string, bool) {
	value, ok := f.Metadata[key]
	return value, ok
}
