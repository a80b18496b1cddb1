// Package batch coordinates one organization run end to end: scan, parallel
// hashing, single-threaded planning, journaled moves across a bounded worker
// pool, and manifest persistence. A filesystem lock keeps runs exclusive.
package batch
