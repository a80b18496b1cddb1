package plan

import "strings"

// Reservations is the shared set of destination paths claimed by a plan.
// One set spans the entire plan so global uniqueness holds even when two
// folders could alias through case-folding filesystems.
type Reservations struct {
	caseInsensitive bool
	claimed         map[string]struct{}
}

func NewReservations(caseInsensitive bool) *Reservations {
	return &Reservations{
		caseInsensitive: caseInsensitive,
		claimed:         make(map[string]struct{}),
	}
}

func (r *Reservations) key(path string) string {
	if r.caseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

// Reserve claims a path. It reports false when the path is already taken.
func (r *Reservations) Reserve(path string) bool {
	key := r.key(path)
	if _, taken := r.claimed[key]; taken {
		return false
	}
	r.claimed[key] = struct{}{}
	return true
}

// Reserved reports whether a path is already claimed.
func (r *Reservations) Reserved(path string) bool {
	_, taken := r.claimed[r.key(path)]
	return taken
}

// Len returns the number of claimed paths.
func (r *Reservations) Len() int {
	return len(r.claimed)
}
