package naming_test

import (
	"errors"
	"strings"
	"testing"

	"mediasort/internal/naming"
)

func TestSanitizeReplacesReservedCharacters(t *testing.T) {
	got, err := naming.Sanitize(`show<>:"/\|?*name`, 255)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got != "show_name" {
		t.Fatalf("expected collapsed underscores, got %q", got)
	}
}

func TestSanitizeStripsControlCharactersAndTrailingPeriods(t *testing.T) {
	got, err := naming.Sanitize("evening\x00set...", 255)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got != "evening_set" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeTruncatesPreservingExtension(t *testing.T) {
	long := strings.Repeat("a", 300) + ".jpg"
	got, err := naming.Sanitize(long, 255)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if len(got) > 255 {
		t.Fatalf("expected at most 255 bytes, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".jpg") {
		t.Fatalf("expected extension preserved, got %q", got)
	}
}

func TestSanitizeEmptyResultFails(t *testing.T) {
	for _, input := range []string{"", "___", "...", "  "} {
		_, err := naming.Sanitize(input, 255)
		if !errors.Is(err, naming.ErrEmptyFilename) {
			t.Fatalf("Sanitize(%q): expected ErrEmptyFilename, got %v", input, err)
		}
	}
}
