// Package logging builds the slog loggers used across mediasort.
//
// It selects console or JSON handlers from configuration, exposes typed
// attribute helpers so call sites stay terse, and augments loggers with
// run/stage fields carried in the context.
package logging
