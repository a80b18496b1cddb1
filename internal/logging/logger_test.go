package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasort/internal/logging"
	"mediasort/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("organization started", logging.String("source", "/tmp/a.jpg"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "organization started") {
		t.Fatalf("expected message in log output, got %q", string(data))
	}
	if !strings.Contains(string(data), "source=/tmp/a.jpg") {
		t.Fatalf("expected attr in log output, got %q", string(data))
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-abc")
	ctx = services.WithStage(ctx, "planning")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 context fields, got %d", len(fields))
	}
	if fields[0].Key != logging.FieldRunID {
		t.Fatalf("unexpected first field: %s", fields[0].Key)
	}
}
