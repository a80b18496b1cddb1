// Package config loads, normalizes, and validates mediasort configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI and batch
// engine need: naming templates, conflict and duplicate policies, worker
// counts, and the journal location.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy names, and clear validation errors.
package config
