package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Type categorizes a media file by its content family.
type Type string

const (
	TypePhoto   Type = "photo"
	TypeVideo   Type = "video"
	TypeRaw     Type = "raw"
	TypeUnknown Type = "unknown"
)

// DeviceKind tags the device family that produced a file.
type DeviceKind string

const (
	DeviceCanon80D DeviceKind = "canon_80d"
	DeviceSonyA6   DeviceKind = "sony_a6"
	DeviceSonyA7   DeviceKind = "sony_a7"
	DeviceNikon    DeviceKind = "nikon"
	DeviceIPhone   DeviceKind = "iphone"
	DeviceAndroid  DeviceKind = "android"
	DeviceDJI      DeviceKind = "dji"
	DeviceUnknown  DeviceKind = "unknown"
)

// Quality buckets a file by expected fidelity, used for scheduling order and
// the quality_selection extension point.
type Quality string

const (
	QualityHigh     Quality = "high"
	QualityStandard Quality = "standard"
	QualityLow      Quality = "low"
)

// TypeForExtension classifies a file extension against the configured format
// lists. RAW extensions win over photo extensions when both contain an entry.
func TypeForExtension(ext string, photoExts, videoExts, rawExts []string) Type {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized == "" {
		return TypeUnknown
	}
	if !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	if containsExt(rawExts, normalized) {
		return TypeRaw
	}
	if containsExt(photoExts, normalized) {
		return TypePhoto
	}
	if containsExt(videoExts, normalized) {
		return TypeVideo
	}
	return TypeUnknown
}

func containsExt(exts []string, ext string) bool {
	for _, candidate := range exts {
		if candidate == ext {
			return true
		}
	}
	return false
}

// ClassifyDevice is a pure classification over make/model metadata and
// filename patterns. Metadata wins over filename heuristics.
func ClassifyDevice(make, model, filename string) DeviceKind {
	makeNorm := strings.ToLower(strings.TrimSpace(make))
	modelNorm := strings.ToLower(strings.TrimSpace(model))
	base := strings.ToUpper(filepath.Base(filename))

	switch {
	case strings.Contains(makeNorm, "canon") && strings.Contains(modelNorm, "80d"):
		return DeviceCanon80D
	case strings.Contains(makeNorm, "sony") && strings.Contains(modelNorm, "ilce-6"):
		return DeviceSonyA6
	case strings.Contains(makeNorm, "sony") && strings.Contains(modelNorm, "ilce-7"):
		return DeviceSonyA7
	case strings.Contains(makeNorm, "nikon"):
		return DeviceNikon
	case strings.Contains(makeNorm, "apple"):
		return DeviceIPhone
	case strings.Contains(makeNorm, "dji"):
		return DeviceDJI
	case strings.Contains(modelNorm, "android") || strings.Contains(makeNorm, "samsung") || strings.Contains(makeNorm, "google"):
		return DeviceAndroid
	}

	switch {
	case strings.HasPrefix(base, "DJI_"):
		return DeviceDJI
	case strings.HasPrefix(base, "DSC"):
		return DeviceSonyA7
	case strings.HasPrefix(base, "IMG_"), strings.HasPrefix(base, "VID_"):
		return DeviceIPhone
	}
	return DeviceUnknown
}

// QualityFor estimates the fidelity bucket from type and byte size, mirroring
// the thresholds the batch scheduler orders work by.
func QualityFor(mediaType Type, size int64) Quality {
	const mib = 1024 * 1024
	switch mediaType {
	case TypeRaw:
		return QualityHigh
	case TypePhoto:
		switch {
		case size > 5*mib:
			return QualityHigh
		case size > 2*mib:
			return QualityStandard
		default:
			return QualityLow
		}
	case TypeVideo:
		switch {
		case size > 100*mib:
			return QualityHigh
		case size > 20*mib:
			return QualityStandard
		default:
			return QualityLow
		}
	default:
		return QualityLow
	}
}

// Priority ranks a file for scheduling: RAW first, then large videos, then
// standard photos, then standard videos, then everything else.
func Priority(mediaType Type, size int64) int {
	quality := QualityFor(mediaType, size)
	switch {
	case mediaType == TypeRaw:
		return 1
	case mediaType == TypeVideo && quality == QualityHigh:
		return 2
	case mediaType == TypePhoto:
		return 3
	case mediaType == TypeVideo:
		return 4
	default:
		return 5
	}
}

// ResolutionLabel maps pixel dimensions to the common name templates expect.
func ResolutionLabel(width, height int) string {
	switch {
	case width <= 0 || height <= 0:
		return "unknown"
	case width >= 3840 && height >= 2160:
		return "4K"
	case width >= 1920 && height >= 1080:
		return "1080p"
	case width >= 1280 && height >= 720:
		return "720p"
	default:
		return fmt.Sprintf("%dx%d", width, height)
	}
}
