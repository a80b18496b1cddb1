package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind discriminates literal from variable tokens.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenVariable
)

// ModifierKind discriminates the format modifier grammar variants.
type ModifierKind int

const (
	// ModifierDate formats a time value with a strftime pattern.
	ModifierDate ModifierKind = iota
	// ModifierPad zero-pads an integer value (e.g. 03d).
	ModifierPad
	// ModifierTransform applies a text transform keyword.
	ModifierTransform
	// ModifierConditional selects between two literals by testing the variable.
	ModifierConditional
)

// Transform is a text transform keyword.
type Transform string

const (
	TransformUpper Transform = "upper"
	TransformLower Transform = "lower"
	TransformSlug  Transform = "slug"
	TransformTitle Transform = "title"
)

// Modifier is the parsed format modifier attached to a variable token.
type Modifier struct {
	Kind ModifierKind
	// Pattern is the strftime pattern for ModifierDate.
	Pattern string
	// PadWidth and PadVerb describe ModifierPad (width, one of d/o/x/X).
	PadWidth int
	PadVerb  byte
	// Transform names the ModifierTransform keyword.
	Transform Transform
	// CondValue/Then/Else describe ModifierConditional. An empty CondValue
	// tests truthiness; otherwise the resolved value is compared for equality.
	CondValue string
	Then      string
	Else      string
}

// Token is one element of a compiled template.
type Token struct {
	Kind TokenKind
	// Text holds the literal body for TokenLiteral.
	Text string
	// Name, Modifier, and Fallback describe TokenVariable.
	Name        string
	Modifier    *Modifier
	Fallback    string
	HasFallback bool
}

// Template is an immutable compiled template.
type Template struct {
	source string
	tokens []Token
}

// Source returns the original template string.
func (t *Template) Source() string { return t.source }

// Tokens returns a copy of the compiled token sequence.
func (t *Template) Tokens() []Token {
	cp := make([]Token, len(t.tokens))
	copy(cp, t.tokens)
	return cp
}

// Variables returns the distinct variable names the template references, in
// first-appearance order.
func (t *Template) Variables() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, token := range t.tokens {
		if token.Kind != TokenVariable {
			continue
		}
		if _, ok := seen[token.Name]; ok {
			continue
		}
		seen[token.Name] = struct{}{}
		names = append(names, token.Name)
	}
	return names
}

// Compile parses a template string and validates every referenced variable
// against the registry. Compilation is pure and performs no I/O; unknown
// variables fail here rather than at render time so callers can validate
// templates before any files are touched.
func Compile(template string, registry *Registry) (*Template, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrTemplateSyntax)
	}
	var tokens []Token
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); {
		ch := template[i]
		switch ch {
		case '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d in %q", ErrTemplateSyntax, i, template)
			}
			body := template[i+1 : i+end]
			if strings.ContainsRune(body, '{') {
				return nil, fmt.Errorf("%w: nested '{' at offset %d in %q", ErrTemplateSyntax, i, template)
			}
			token, err := parseVariableToken(body)
			if err != nil {
				return nil, err
			}
			if _, ok := registry.Lookup(token.Name); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, token.Name)
			}
			flushLiteral()
			tokens = append(tokens, token)
			i += end + 1
		case '}':
			return nil, fmt.Errorf("%w: unmatched '}' at offset %d in %q", ErrTemplateSyntax, i, template)
		default:
			literal.WriteByte(ch)
			i++
		}
	}
	flushLiteral()

	return &Template{source: template, tokens: tokens}, nil
}

// parseVariableToken splits a brace body into name, modifier, and fallback.
// Accepted forms: name | name|fallback | name:modifier | name:modifier|fallback.
func parseVariableToken(body string) (Token, error) {
	if strings.TrimSpace(body) == "" {
		return Token{}, fmt.Errorf("%w: empty variable reference", ErrTemplateSyntax)
	}

	name := body
	var modifierText, fallback string
	hasModifier, hasFallback := false, false

	colon := strings.IndexByte(body, ':')
	pipe := strings.IndexByte(body, '|')

	switch {
	case colon >= 0 && (pipe < 0 || colon < pipe):
		name = body[:colon]
		rest := body[colon+1:]
		if sep := strings.IndexByte(rest, '|'); sep >= 0 {
			modifierText = rest[:sep]
			fallback = rest[sep+1:]
			hasFallback = true
		} else {
			modifierText = rest
		}
		hasModifier = true
	case pipe >= 0:
		name = body[:pipe]
		fallback = body[pipe+1:]
		hasFallback = true
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Token{}, fmt.Errorf("%w: variable reference %q has no name", ErrTemplateSyntax, body)
	}

	token := Token{Kind: TokenVariable, Name: name, Fallback: fallback, HasFallback: hasFallback}
	if hasModifier {
		modifier, err := parseModifier(name, modifierText)
		if err != nil {
			return Token{}, err
		}
		token.Modifier = modifier
	}
	return token, nil
}

func parseModifier(name, text string) (*Modifier, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty modifier for variable %s", ErrTemplateSyntax, name)
	}

	// Conditional: cond?then:else, single level, no nesting.
	if q := strings.IndexByte(text, '?'); q >= 0 {
		cond := text[:q]
		branches := text[q+1:]
		sep := strings.IndexByte(branches, ':')
		if sep < 0 {
			return nil, fmt.Errorf("%w: conditional modifier %q for %s is missing ':'", ErrTemplateSyntax, text, name)
		}
		thenBranch := branches[:sep]
		elseBranch := branches[sep+1:]
		if strings.ContainsAny(elseBranch, "?") {
			return nil, fmt.Errorf("%w: nested conditional in modifier %q for %s", ErrTemplateSyntax, text, name)
		}
		return &Modifier{Kind: ModifierConditional, CondValue: cond, Then: thenBranch, Else: elseBranch}, nil
	}

	switch Transform(text) {
	case TransformUpper, TransformLower, TransformSlug, TransformTitle:
		return &Modifier{Kind: ModifierTransform, Transform: Transform(text)}, nil
	}

	if modifier, ok := parsePadModifier(text); ok {
		return modifier, nil
	}

	if strings.ContainsRune(text, '%') {
		return &Modifier{Kind: ModifierDate, Pattern: text}, nil
	}

	return nil, fmt.Errorf("%w: unrecognized modifier %q for variable %s", ErrTemplateSyntax, text, name)
}

// parsePadModifier recognizes 0N-width integer formats such as 03d or 4x.
func parsePadModifier(text string) (*Modifier, bool) {
	if len(text) == 0 {
		return nil, false
	}
	verb := text[len(text)-1]
	switch verb {
	case 'd', 'o', 'x', 'X':
	default:
		return nil, false
	}
	widthText := text[:len(text)-1]
	width := 1
	if widthText != "" {
		parsed, err := strconv.Atoi(widthText)
		if err != nil || parsed < 0 {
			return nil, false
		}
		width = parsed
	}
	return &Modifier{Kind: ModifierPad, PadWidth: width, PadVerb: verb}, true
}
