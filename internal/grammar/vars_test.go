package grammar

import (
	"reflect"
	"testing"
)

func TestSubstituteVars_AllResolved(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "VAR_MODE" {
			return "on", true
		}
		return "", false
	}
	out, missing, ok := substituteVars("state-$VAR_MODE", lookup)
	if !ok {
		t.Fatalf("expected ok, missing=%v", missing)
	}
	if out != "state-on" {
		t.Fatalf("got %q", out)
	}
}

func TestSubstituteVars_MissingParksName(t *testing.T) {
	lookup := func(string) (string, bool) { return "", false }
	_, missing, ok := substituteVars("$VAR_MODE and $VAR_OTHER and $VAR_MODE", lookup)
	if ok {
		t.Fatal("expected ok=false for undefined variables")
	}
	want := []string{"VAR_MODE", "VAR_OTHER"}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
}

func TestSubstituteVars_NoTokensPassesThrough(t *testing.T) {
	out, missing, ok := substituteVars("plain-value", func(string) (string, bool) { return "", false })
	if !ok || out != "plain-value" || missing != nil {
		t.Fatalf("got out=%q missing=%v ok=%v", out, missing, ok)
	}
}

func TestSubstituteVars_IndexSelectsLine(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "VAR_LINES" {
			return "first\nsecond\nthird", true
		}
		return "", false
	}
	out, _, ok := substituteVars("$VAR_LINES[2]", lookup)
	if !ok || out != "second" {
		t.Fatalf("got out=%q ok=%v", out, ok)
	}
}

func TestSubstituteVars_IndexHashIsLineCount(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "VAR_LINES" {
			return "first\nsecond\nthird", true
		}
		return "", false
	}
	out, _, ok := substituteVars("$VAR_LINES[#]", lookup)
	if !ok || out != "3" {
		t.Fatalf("got out=%q ok=%v", out, ok)
	}
}

func TestSubstituteVars_IndexOutOfRangeIsEmpty(t *testing.T) {
	lookup := func(string) (string, bool) { return "only", true }
	out, _, ok := substituteVars("$VAR_LINES[5]", lookup)
	if !ok || out != "" {
		t.Fatalf("got out=%q ok=%v", out, ok)
	}
}

func TestSubstituteVars_SDFSToken(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "SDFS_PAGE" {
			return "3", true
		}
		return "", false
	}
	out, _, ok := substituteVars("page-$SDFS_PAGE", lookup)
	if !ok || out != "page-3" {
		t.Fatalf("got out=%q ok=%v", out, ok)
	}
}

func TestSubstituteVars_RejectsSingleLetterName(t *testing.T) {
	// `VAR_A` is only one character past the prefix, which can't satisfy
	// `[A-Z][A-Z0-9_]*[A-Z0-9]` (first char + last char need two distinct
	// positions), so it is not recognized as a variable token at all.
	out, missing, ok := substituteVars("$VAR_A stays literal", func(string) (string, bool) { return "", false })
	if !ok || missing != nil {
		t.Fatalf("expected no recognized token, got out=%q missing=%v ok=%v", out, missing, ok)
	}
	if out != "$VAR_A stays literal" {
		t.Fatalf("got %q", out)
	}
}

func TestSubstituteVars_TrailingUnderscoreNotPartOfName(t *testing.T) {
	// A trailing underscore can't be the name's last character, so the
	// token recognized is `VAR_AB`, leaving the underscore as literal text.
	_, missing, ok := substituteVars("$VAR_AB_", func(string) (string, bool) { return "", false })
	if ok {
		t.Fatalf("expected ok=false (VAR_AB undefined), missing=%v", missing)
	}
	if !reflect.DeepEqual(missing, []string{"VAR_AB"}) {
		t.Fatalf("missing = %v, want [VAR_AB]", missing)
	}
}
