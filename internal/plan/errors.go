package plan

import "errors"

// ErrConflictExhausted indicates the disambiguation suffix loop hit its cap
// without finding a free path.
var ErrConflictExhausted = errors.New("conflict resolution exhausted")

// ErrDestinationExists indicates a destination is occupied on disk and the
// skip policy excluded the file from the plan.
var ErrDestinationExists = errors.New("destination exists")
