// Package media defines the SourceFile descriptor plus the pure
// classification functions for media type, producing device, and quality.
package media
