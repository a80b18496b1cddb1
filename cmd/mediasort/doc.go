// Command mediasort organizes media file dumps into a structured library
// using configurable naming templates, duplicate detection, and journaled
// crash-safe moves.
package main
