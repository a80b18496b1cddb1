// Package services defines shared utilities consumed by the batch coordinator
// and the organization stages.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent manifest dispositions (excluded vs failed).
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
