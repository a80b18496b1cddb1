package naming

import (
	"fmt"
	"strings"

	"github.com/ncruces/go-strftime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Render produces a filename candidate (without extension) from a compiled
// template and a per-file context. For each variable token the fixed order is
// resolve, then transform, then format. Rendering is deterministic for a given
// (template, context) pair and performs no I/O.
//
// The concatenated result passes through Sanitize with the given maximum
// component length; an empty result yields ErrEmptyFilename.
func Render(template *Template, registry *Registry, ctx *Context, maxComponentBytes int) (string, error) {
	raw, err := RenderRaw(template, registry, ctx)
	if err != nil {
		return "", err
	}
	return Sanitize(raw, maxComponentBytes)
}

// RenderRaw renders a template without sanitization. Folder planning uses
// this so path separators in literals survive as component boundaries.
func RenderRaw(template *Template, registry *Registry, ctx *Context) (string, error) {
	if template == nil {
		return "", fmt.Errorf("%w: nil template", ErrTemplateSyntax)
	}
	var out strings.Builder
	for _, token := range template.tokens {
		switch token.Kind {
		case TokenLiteral:
			out.WriteString(token.Text)
		case TokenVariable:
			rendered, err := renderVariable(token, registry, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
	}
	return out.String(), nil
}

func renderVariable(token Token, registry *Registry, ctx *Context) (string, error) {
	value, resolveErr := registry.Resolve(token.Name, ctx)

	// Conditionals short-circuit on resolution of the governing variable only:
	// a miss simply makes the test false.
	if token.Modifier != nil && token.Modifier.Kind == ModifierConditional {
		return evalConditional(token.Modifier, value), nil
	}

	if resolveErr != nil {
		if token.HasFallback {
			value = token.Fallback
		} else if def, ok := registry.Lookup(token.Name); ok && def.HasFallback {
			value = def.Fallback
		} else {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedVariable, token.Name)
		}
	}

	if token.Modifier == nil {
		return value, nil
	}

	switch token.Modifier.Kind {
	case ModifierTransform:
		return applyTransform(value, token.Modifier.Transform), nil
	case ModifierPad:
		return applyPad(value, token.Modifier, ctx), nil
	case ModifierDate:
		return applyDatePattern(token, value, registry, ctx), nil
	default:
		return value, nil
	}
}

func evalConditional(modifier *Modifier, value string) string {
	matched := false
	if modifier.CondValue == "" {
		matched = strings.TrimSpace(value) != ""
	} else {
		matched = value == modifier.CondValue
	}
	if matched {
		return modifier.Then
	}
	return modifier.Else
}

func applyTransform(value string, transform Transform) string {
	switch transform {
	case TransformUpper:
		return strings.ToUpper(value)
	case TransformLower:
		return strings.ToLower(value)
	case TransformTitle:
		return titleCaser.String(value)
	case TransformSlug:
		return slugify(value)
	default:
		return value
	}
}

func slugify(value string) string {
	var out strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				out.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(out.String(), "-")
}

func applyPad(value string, modifier *Modifier, ctx *Context) string {
	n, ok := parseInteger(value)
	if !ok {
		if seq, seqOK := ctx.SequenceValue(); seqOK {
			n = int64(seq)
		} else {
			return value
		}
	}
	verb := string(modifier.PadVerb)
	return fmt.Sprintf("%0*"+verb, modifier.PadWidth, n)
}

// applyDatePattern re-formats a system clock variable with an explicit
// strftime pattern, overriding the registry default. Values supplied by the
// user or file metadata tiers are already strings and pass through unchanged.
func applyDatePattern(token Token, value string, registry *Registry, ctx *Context) string {
	def, ok := registry.Lookup(token.Name)
	if !ok || def.Source != SourceSystemContext || ctx == nil || ctx.Now.IsZero() {
		return value
	}
	if _, overridden := ctx.User[token.Name]; overridden {
		return value
	}
	if _, overridden := ctx.Metadata[token.Name]; overridden {
		return value
	}
	return strftime.Format(token.Modifier.Pattern, ctx.Now)
}
