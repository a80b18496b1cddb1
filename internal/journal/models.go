package journal

import "time"

// State tracks a move intent through the write-ahead protocol. Every
// destination-visible filesystem effect is recorded before it happens, so a
// crash at any point leaves enough to finish or undo the move.
type State string

const (
	// StatePlanned records the intent before any filesystem effect.
	StatePlanned State = "planned"
	// StateReserved means the destination path is claimed for this entry.
	StateReserved State = "reserved"
	// StateCopied means a cross-volume copy landed in the temp sibling.
	StateCopied State = "copied"
	// StateRenamed means a same-volume rename placed the final file.
	StateRenamed State = "renamed"
	// StateVerified means the destination fingerprint matched the source.
	StateVerified State = "verified"
	// StateCommitted is terminal: source removed, move durable.
	StateCommitted State = "committed"
	// StateFailed is terminal and absorbing.
	StateFailed State = "failed"
)

// Strategy is the move mechanism chosen for an entry.
type Strategy string

const (
	StrategyRename Strategy = "rename"
	StrategyCopy   Strategy = "copy"
)

// Entry is one journaled move intent.
type Entry struct {
	ID           int64
	RunID        string
	SourcePath   string
	DestPath     string
	TempPath     string
	Fingerprint  string
	Size         int64
	Strategy     Strategy
	State        State
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether the entry needs no recovery attention.
func (e *Entry) Terminal() bool {
	return e.State == StateCommitted || e.State == StateFailed
}

// RunStatus is the lifecycle of a batch run row.
type RunStatus string

const (
	RunActive              RunStatus = "active"
	RunCompleted           RunStatus = "completed"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	RunAborted             RunStatus = "aborted"
)

// Run is one batch execution.
type Run struct {
	ID         string
	SourceDir  string
	LibraryDir string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Outcome is one manifest line: what happened to one scanned file.
type Outcome struct {
	RunID      string
	SourcePath string
	DestPath   string
	Result     string
	Reason     string
	RecordedAt time.Time
}

// validTransitions is the entry state machine. Failed is reachable from any
// non-terminal state and is handled separately in Transition.
var validTransitions = map[State][]State{
	StatePlanned:  {StateReserved},
	StateReserved: {StateCopied, StateRenamed},
	StateCopied:   {StateVerified},
	StateRenamed:  {StateVerified},
	StateVerified: {StateCommitted},
}

func transitionAllowed(from, to State) bool {
	if to == StateFailed {
		return from != StateCommitted && from != StateFailed
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
