package journal

import "errors"

// ErrJournalCorruption indicates the journal database exists but cannot be
// trusted: unreadable file, failed integrity check, or a schema written by an
// incompatible version. Recovery must stop rather than guess.
var ErrJournalCorruption = errors.New("journal corruption")

// ErrInvalidTransition indicates a caller attempted an entry state change the
// protocol does not allow.
var ErrInvalidTransition = errors.New("invalid journal state transition")

// ErrEntryNotFound indicates the referenced entry does not exist, or its
// current state did not match the expected state of a guarded transition.
var ErrEntryNotFound = errors.New("journal entry not found")
