package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediasort/internal/journal"
)

// Result values for manifest lines.
const (
	ResultMoved    = "moved"
	ResultExcluded = "excluded"
	ResultFailed   = "failed"
)

// Line is one file's final outcome.
type Line struct {
	SourcePath string
	DestPath   string
	Result     string
	Reason     string
}

// Status renders the outcome the way operators read it: bare result for
// moves, "result: reason" otherwise.
func (l Line) Status() string {
	if l.Reason == "" {
		return l.Result
	}
	return fmt.Sprintf("%s: %s", l.Result, l.Reason)
}

// Manifest enumerates every scanned file's outcome for one run. No file is
// ever silently dropped from the report.
type Manifest struct {
	RunID       string
	RunStatus   journal.RunStatus
	GeneratedAt time.Time
	Lines       []Line
}

// FromJournal assembles a manifest from a run's persisted outcome rows.
func FromJournal(run *journal.Run, outcomes []journal.Outcome) *Manifest {
	m := &Manifest{
		RunID:       run.ID,
		RunStatus:   run.Status,
		GeneratedAt: time.Now().UTC(),
		Lines:       make([]Line, 0, len(outcomes)),
	}
	for _, outcome := range outcomes {
		m.Lines = append(m.Lines, Line{
			SourcePath: outcome.SourcePath,
			DestPath:   outcome.DestPath,
			Result:     outcome.Result,
			Reason:     outcome.Reason,
		})
	}
	return m
}

// Counts tallies lines by result.
func (m *Manifest) Counts() (moved, excluded, failed int) {
	for _, line := range m.Lines {
		switch line.Result {
		case ResultMoved:
			moved++
		case ResultExcluded:
			excluded++
		case ResultFailed:
			failed++
		}
	}
	return moved, excluded, failed
}

// Render produces the human-readable manifest text.
func (m *Manifest) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s)\n", m.RunID, m.RunStatus)
	fmt.Fprintf(&b, "generated %s\n", m.GeneratedAt.Format(time.RFC3339))
	moved, excluded, failed := m.Counts()
	fmt.Fprintf(&b, "moved %d, excluded %d, failed %d\n\n", moved, excluded, failed)

	for _, line := range m.Lines {
		switch line.Result {
		case ResultMoved:
			fmt.Fprintf(&b, "%s\n    -> %s\n", line.SourcePath, line.DestPath)
		default:
			fmt.Fprintf(&b, "%s\n    %s\n", line.SourcePath, line.Status())
		}
	}
	return b.String()
}

// Write persists the manifest under dir as manifest-<runID>.txt and returns
// the written path.
func (m *Manifest) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create manifest dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("manifest-%s.txt", m.RunID))
	if err := os.WriteFile(path, []byte(m.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
