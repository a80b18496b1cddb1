package plan

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolver disambiguates candidate destination paths against the shared
// reservation set and the files already on disk.
type resolver struct {
	reservations *Reservations
	existsOnDisk func(path string) bool
	token        string
	cap          int
}

// resolve reserves the candidate path, appending a numeric suffix before the
// extension (_v1, _v2, ...) until a free path is found. A path counts as
// taken when either the plan reserved it or a file already occupies it on
// disk. When sameContent reports a disk occupant as byte-identical to the
// source, resolve stops there and reports the move as already satisfied, so
// re-running an identical plan never versions past its own prior output.
// Fails with ErrConflictExhausted past the cap.
func (r *resolver) resolve(candidate string, sameContent func(path string) bool) (path string, satisfied bool, err error) {
	ext := filepath.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)

	for n := 0; n <= r.cap; n++ {
		probe := candidate
		if n > 0 {
			probe = fmt.Sprintf("%s%s%d%s", stem, r.token, n, ext)
		}
		if r.reservations.Reserved(probe) {
			continue
		}
		if r.existsOnDisk != nil && r.existsOnDisk(probe) {
			if sameContent != nil && sameContent(probe) {
				return probe, true, nil
			}
			continue
		}
		r.reservations.Reserve(probe)
		return probe, false, nil
	}
	return "", false, fmt.Errorf("%w: %s after %d attempts", ErrConflictExhausted, candidate, r.cap)
}

// reserveExact claims the candidate path even when occupied on disk. Used by
// the overwrite policy; still fails when another plan item holds the path.
func (r *resolver) reserveExact(candidate string) error {
	if !r.reservations.Reserve(candidate) {
		return fmt.Errorf("%w: %s reserved by another file", ErrConflictExhausted, candidate)
	}
	return nil
}

func (r *resolver) onDisk(path string) bool {
	return r.existsOnDisk != nil && r.existsOnDisk(path)
}
