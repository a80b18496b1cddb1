package media

import "testing"

func TestTypeForExtension(t *testing.T) {
	photo := []string{".jpg", ".jpeg", ".png", ".heic"}
	video := []string{".mp4", ".mov"}
	raw := []string{".cr2", ".arw", ".dng"}

	tests := []struct {
		ext  string
		want Type
	}{
		{".jpg", TypePhoto},
		{"JPG", TypePhoto},
		{".mov", TypeVideo},
		{".arw", TypeRaw},
		{".txt", TypeUnknown},
		{"", TypeUnknown},
	}
	for _, tt := range tests {
		if got := TypeForExtension(tt.ext, photo, video, raw); got != tt.want {
			t.Errorf("TypeForExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestClassifyDeviceMetadataWinsOverFilename(t *testing.T) {
	// Filename says iPhone, metadata says Canon.
	if got := ClassifyDevice("Canon", "EOS 80D", "IMG_0042.jpg"); got != DeviceCanon80D {
		t.Fatalf("ClassifyDevice = %v, want %v", got, DeviceCanon80D)
	}
}

func TestClassifyDeviceFilenameFallback(t *testing.T) {
	tests := []struct {
		filename string
		want     DeviceKind
	}{
		{"DJI_0005.mp4", DeviceDJI},
		{"DSC04412.arw", DeviceSonyA7},
		{"IMG_1234.heic", DeviceIPhone},
		{"VID_20250308.mov", DeviceIPhone},
		{"clip.mp4", DeviceUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyDevice("", "", tt.filename); got != tt.want {
			t.Errorf("ClassifyDevice(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestQualityFor(t *testing.T) {
	const mib = 1024 * 1024
	tests := []struct {
		mediaType Type
		size      int64
		want      Quality
	}{
		{TypeRaw, 1, QualityHigh},
		{TypePhoto, 6 * mib, QualityHigh},
		{TypePhoto, 3 * mib, QualityStandard},
		{TypePhoto, 1 * mib, QualityLow},
		{TypeVideo, 200 * mib, QualityHigh},
		{TypeVideo, 50 * mib, QualityStandard},
		{TypeVideo, 5 * mib, QualityLow},
		{TypeUnknown, 500 * mib, QualityLow},
	}
	for _, tt := range tests {
		if got := QualityFor(tt.mediaType, tt.size); got != tt.want {
			t.Errorf("QualityFor(%v, %d) = %v, want %v", tt.mediaType, tt.size, got, tt.want)
		}
	}
}

func TestPriorityOrdering(t *testing.T) {
	const mib = 1024 * 1024
	raw := Priority(TypeRaw, 30*mib)
	bigVideo := Priority(TypeVideo, 200*mib)
	photo := Priority(TypePhoto, 3*mib)
	smallVideo := Priority(TypeVideo, 5*mib)
	unknown := Priority(TypeUnknown, 1*mib)

	if !(raw < bigVideo && bigVideo < photo && photo < smallVideo && smallVideo < unknown) {
		t.Fatalf("priority ordering broken: raw=%d video=%d photo=%d smallVideo=%d unknown=%d",
			raw, bigVideo, photo, smallVideo, unknown)
	}
}

func TestResolutionLabel(t *testing.T) {
	tests := []struct {
		w, h int
		want string
	}{
		{3840, 2160, "4K"},
		{1920, 1080, "1080p"},
		{1280, 720, "720p"},
		{640, 480, "640x480"},
		{0, 0, "unknown"},
	}
	for _, tt := range tests {
		if got := ResolutionLabel(tt.w, tt.h); got != tt.want {
			t.Errorf("ResolutionLabel(%d, %d) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}
