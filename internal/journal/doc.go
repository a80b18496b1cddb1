// Package journal persists the write-ahead move journal in SQLite.
//
// Every move records its intent before touching the destination and advances
// through a guarded state machine (planned, reserved, copied or renamed,
// verified, committed) so a crash at any point leaves a recoverable record.
// Batch runs and per-file manifest outcomes live in the same database.
package journal
