// Package naming implements the variable registry, template compiler, and
// renderer behind mediasort's filename and folder templates.
//
// Templates use {name}, {name|fallback}, {name:modifier}, and
// {name:modifier|fallback} placeholders. Modifiers are strftime date patterns,
// zero-pad widths such as 03d, text transforms (upper, lower, slug, title),
// or a single-level conditional of the form cond?then:else.
//
// Compilation is pure and validates every referenced variable against the
// registry up front, so templates can be rejected before any file is touched.
// Rendering resolves variables through three tiers (user input, file
// metadata, system/configuration defaults) and sanitizes the result into a
// filesystem-safe path component.
package naming
