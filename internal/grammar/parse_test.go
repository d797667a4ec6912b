package grammar

import (
	"testing"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

func TestParse_SimpleArgs(t *testing.T) {
	r := Parse("IMAGE;layer=1;colorize=white", nil, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	if r.Main != "IMAGE" {
		t.Fatalf("got main=%q", r.Main)
	}
	if r.Attrs["layer"] != "1" || r.Attrs["colorize"] != "white" {
		t.Fatalf("got attrs=%v", r.Attrs)
	}
}

func TestParse_BareFlagResolvesTrue(t *testing.T) {
	r := Parse("ON_PRESS;unique", nil, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v", r.Outcome)
	}
	if !r.Attrs.Bool("unique", false) {
		t.Fatal("expected unique to resolve true")
	}
}

func TestParse_UndefinedVarWaits(t *testing.T) {
	r := Parse("IMAGE;colorize=$VAR_MODE", nil, nil)
	if r.Outcome != WaitVars {
		t.Fatalf("expected WaitVars, got %v", r.Outcome)
	}
	if len(r.Missing) != 1 || r.Missing[0] != "VAR_MODE" {
		t.Fatalf("got missing=%v", r.Missing)
	}
}

func TestParse_DefinedVarSubstitutes(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "VAR_MODE" {
			return "red", true
		}
		return "", false
	}
	r := Parse("IMAGE;colorize=$VAR_MODE", lookup, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	if r.Attrs["colorize"] != "red" {
		t.Fatalf("got colorize=%q", r.Attrs["colorize"])
	}
}

func TestParse_ExpressionEvaluated(t *testing.T) {
	r := Parse("IMAGE;opacity={50+25}", nil, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	if r.Attrs["opacity"] != "75" {
		t.Fatalf("got opacity=%q", r.Attrs["opacity"])
	}
}

func TestParse_UnresolvedRefWaits(t *testing.T) {
	r := Parse("IMAGE;ref=other-key/IMAGE", nil, nil)
	if r.Outcome != WaitRef {
		t.Fatalf("expected WaitRef, got %v", r.Outcome)
	}
	if r.RefSelector != "other-key/IMAGE" {
		t.Fatalf("got selector=%q", r.RefSelector)
	}
}

func TestParse_ResolvedRefMergesBeneathSelf(t *testing.T) {
	resolver := func(selector string) (entities.Attrs, bool) {
		if selector != "other" {
			return nil, false
		}
		return entities.Attrs{"colorize": "white", "margin": "1,1,1,1"}, true
	}
	r := Parse("IMAGE;ref=other;colorize=blue", nil, resolver)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	if r.Attrs["colorize"] != "blue" {
		t.Fatalf("expected self's colorize to win, got %q", r.Attrs["colorize"])
	}
	if r.Attrs["margin"] != "1,1,1,1" {
		t.Fatalf("expected target's margin to carry through, got %q", r.Attrs["margin"])
	}
}

func TestParse_EscapedSlashAndSemicolon(t *testing.T) {
	r := Parse(`IMAGE;file=a\bc^d`, nil, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	if r.Attrs["file"] != "a/bc;d" {
		t.Fatalf("got file=%q", r.Attrs["file"])
	}
}

func TestParse_DottedSubKeyFolds(t *testing.T) {
	r := Parse("IMAGE;margin=5,5,5,5;margin.top=20", nil, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	if r.Attrs["margin"] != "20,5,5,5" {
		t.Fatalf("got margin=%q", r.Attrs["margin"])
	}
}
