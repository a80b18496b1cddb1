// Package mover executes journaled, crash-safe file moves.
//
// Every move writes its intent to the journal before touching the
// destination, then advances the entry through the protocol states as the
// filesystem work lands. Same-volume moves are one atomic rename;
// cross-volume moves copy to a temp sibling, verify the fingerprint, rename
// into place, and only then delete the source. Recover replays the journal
// after a crash and either finalizes, re-attempts, or fails each
// interrupted move without ever overwriting a file the batch cannot prove
// it produced.
package mover
