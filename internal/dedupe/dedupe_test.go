package dedupe

import (
	"testing"
	"time"

	"mediasort/internal/media"
)

func seeded(path, sum string, capture time.Time) *media.SourceFile {
	file := &media.SourceFile{Path: path, CaptureTime: capture}
	file.SetFingerprint(sum)
	return file
}

func TestParsePolicy(t *testing.T) {
	for _, value := range []string{"skip_duplicates", " Version_Naming ", "quality_selection", "ARCHIVE_DUPLICATES"} {
		if _, err := ParsePolicy(value); err != nil {
			t.Errorf("ParsePolicy(%q): %v", value, err)
		}
	}
	if _, err := ParsePolicy("keep_all"); err == nil {
		t.Fatal("ParsePolicy accepted unknown policy")
	}
}

func TestDetectGroupsByFingerprint(t *testing.T) {
	base := time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC)
	a := seeded("/src/a.jpg", "aaa", base.Add(2*time.Hour))
	b := seeded("/src/b.jpg", "aaa", base)
	c := seeded("/src/c.jpg", "ccc", base)

	groups, failed := Detect([]*media.SourceFile{a, b, c})
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 (unique files are not groups)", len(groups))
	}

	group := groups[0]
	if group.Fingerprint != "aaa" {
		t.Fatalf("group fingerprint = %q", group.Fingerprint)
	}
	if rep := group.Representative(); rep != b {
		t.Fatalf("representative = %s, want earliest capture %s", rep.Path, b.Path)
	}
}

func TestDetectOrderIndependent(t *testing.T) {
	base := time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC)
	a := seeded("/src/a.jpg", "aaa", base)
	b := seeded("/src/b.jpg", "aaa", base)

	forward, _ := Detect([]*media.SourceFile{a, b})
	reversed, _ := Detect([]*media.SourceFile{b, a})

	if forward[0].Representative() != reversed[0].Representative() {
		t.Fatal("representative depends on input order")
	}
	// Equal capture times fall back to path order.
	if rep := forward[0].Representative(); rep != a {
		t.Fatalf("representative = %s, want lexicographically first path", rep.Path)
	}
}

func TestDetectZeroCaptureTimeSortsLast(t *testing.T) {
	known := seeded("/src/z.jpg", "aaa", time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC))
	unknown := seeded("/src/a.jpg", "aaa", time.Time{})

	groups, _ := Detect([]*media.SourceFile{unknown, known})
	if rep := groups[0].Representative(); rep != known {
		t.Fatalf("representative = %s, want member with known capture time", rep.Path)
	}
}

func TestDetectIsolatesHashFailures(t *testing.T) {
	good := seeded("/src/a.jpg", "aaa", time.Time{})
	alsoGood := seeded("/src/b.jpg", "aaa", time.Time{})
	bad := &media.SourceFile{Path: "/nonexistent/unreadable.jpg"}

	groups, failed := Detect([]*media.SourceFile{good, bad, alsoGood})
	if len(failed) != 1 {
		t.Fatalf("got %d failures, want 1", len(failed))
	}
	if _, ok := failed[bad]; !ok {
		t.Fatal("unreadable file not reported in failures")
	}
	if len(groups) != 1 || len(groups[0].Files) != 2 {
		t.Fatalf("grouping disturbed by hash failure: %+v", groups)
	}
}

func TestRepresentativeByComparator(t *testing.T) {
	small := seeded("/src/a.jpg", "aaa", time.Time{})
	small.Size = 10
	large := seeded("/src/b.jpg", "aaa", time.Time{})
	large.Size = 100

	groups, _ := Detect([]*media.SourceFile{small, large})
	group := groups[0]

	bySize := func(a, b *media.SourceFile) int {
		return int(a.Size - b.Size)
	}
	if rep := group.RepresentativeBy(bySize); rep != large {
		t.Fatalf("RepresentativeBy = %s, want the larger file", rep.Path)
	}
	if rep := group.RepresentativeBy(nil); rep != small {
		t.Fatalf("nil comparator should fall back to deterministic order, got %s", rep.Path)
	}
}
