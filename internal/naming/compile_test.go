package naming_test

import (
	"errors"
	"testing"

	"mediasort/internal/naming"
)

func testRegistry(t *testing.T) *naming.Registry {
	t.Helper()
	return naming.DefaultRegistry(nil)
}

func TestCompileAcceptsDeclaredVariables(t *testing.T) {
	registry := testRegistry(t)

	cases := []string{
		"{event_name}_{date}_{sequence:03d}",
		"{artist_names|Unknown Artist}",
		"{event_name:slug}/{date}",
		"{resolution:4K?_4K:_HD}",
		"plain literal only",
		"{date:%Y%m%d}",
	}
	for _, template := range cases {
		if _, err := naming.Compile(template, registry); err != nil {
			t.Fatalf("Compile(%q) returned error: %v", template, err)
		}
	}
}

func TestCompileRejectsUnknownVariable(t *testing.T) {
	registry := testRegistry(t)
	_, err := naming.Compile("{event_name}_{nonexistent}", registry)
	if !errors.Is(err, naming.ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable, got %v", err)
	}
}

func TestCompileRejectsMalformedTemplates(t *testing.T) {
	registry := testRegistry(t)
	cases := []string{
		"{event_name",
		"event_name}",
		"{}",
		"{event_name:}",
		"{date:bogus}",
		"{resolution:4K?_4K}",
	}
	for _, template := range cases {
		_, err := naming.Compile(template, registry)
		if !errors.Is(err, naming.ErrTemplateSyntax) {
			t.Fatalf("Compile(%q): expected ErrTemplateSyntax, got %v", template, err)
		}
	}
}

func TestCompileTokensPreserveOrder(t *testing.T) {
	registry := testRegistry(t)
	template, err := naming.Compile("{event_name}_{sequence:03d}", registry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tokens := template.Tokens()
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].Kind != naming.TokenVariable || tokens[0].Name != "event_name" {
		t.Fatalf("unexpected first token: %+v", tokens[0])
	}
	if tokens[1].Kind != naming.TokenLiteral || tokens[1].Text != "_" {
		t.Fatalf("unexpected literal token: %+v", tokens[1])
	}
	seq := tokens[2]
	if seq.Modifier == nil || seq.Modifier.Kind != naming.ModifierPad || seq.Modifier.PadWidth != 3 {
		t.Fatalf("unexpected sequence modifier: %+v", seq.Modifier)
	}

	names := template.Variables()
	if len(names) != 2 || names[0] != "event_name" || names[1] != "sequence" {
		t.Fatalf("unexpected variable list: %v", names)
	}
}

func TestCompileParsesFallbackAndConditional(t *testing.T) {
	registry := testRegistry(t)

	template, err := naming.Compile("{artist_names|Unknown Artist}", registry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	token := template.Tokens()[0]
	if !token.HasFallback || token.Fallback != "Unknown Artist" {
		t.Fatalf("unexpected fallback token: %+v", token)
	}

	template, err = naming.Compile("{resolution:4K?_4K:_HD}", registry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	modifier := template.Tokens()[0].Modifier
	if modifier == nil || modifier.Kind != naming.ModifierConditional {
		t.Fatalf("expected conditional modifier, got %+v", modifier)
	}
	if modifier.CondValue != "4K" || modifier.Then != "_4K" || modifier.Else != "_HD" {
		t.Fatalf("unexpected conditional parts: %+v", modifier)
	}
}
