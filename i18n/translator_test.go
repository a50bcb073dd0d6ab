package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("integer.invalid", nil); msg != "A valid integer is required." {
		t.Fatalf("expected english template, got %q", msg)
	}

	SetLanguage("ja")
	defer SetLanguage("en")
	if msg := T("integer.invalid", nil); msg == "A valid integer is required." {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	// kinds without a japanese entry fall back to english
	if msg := T("rules.unique", nil); msg != "Duplicate value {value}." {
		t.Fatalf("expected english fallback, got %q", msg)
	}
}

func TestTranslator_BareKindUsesFieldScope(t *testing.T) {
	if msg := T("required", nil); msg != "This field is required." {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := T("nope.nothing", nil); msg != "nope.nothing" {
		t.Fatalf("unknown codes should echo the code, got %q", msg)
	}
}

type upperTranslator struct{}

func (upperTranslator) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator_ScopeResolvesThroughTranslator(t *testing.T) {
	SetTranslator(upperTranslator{})
	defer SetTranslator(nil)

	got := Scope("list")
	if got["empty"] != "X:list.empty" {
		t.Fatalf("scope should resolve through translator, got %v", got)
	}
}
