package naming

import "errors"

var (
	// ErrTemplateSyntax reports a malformed template string.
	ErrTemplateSyntax = errors.New("template syntax error")
	// ErrUnknownVariable reports a template referencing an undeclared variable.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrUnresolvedVariable reports a required variable with no value and no fallback.
	ErrUnresolvedVariable = errors.New("unresolved variable")
	// ErrEmptyFilename reports a template that rendered to nothing after sanitization.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrMissingVariable reports a variable the registry could not resolve.
	ErrMissingVariable = errors.New("missing variable")
)
