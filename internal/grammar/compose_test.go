package grammar

import (
	"testing"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

func TestCompose_CanonicalOrder(t *testing.T) {
	attrs := entities.Attrs{"opacity": "50", "layer": "1", "colorize": "white"}
	got := Compose(entities.KindLayer, "IMAGE", attrs)
	want := "IMAGE;layer=1;colorize=white;opacity=50"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompose_UnknownKeysSortAfterCanonical(t *testing.T) {
	attrs := entities.Attrs{"layer": "1", "zeta": "z", "alpha": "a"}
	got := Compose(entities.KindLayer, "IMAGE", attrs)
	want := "IMAGE;layer=1;alpha=a;zeta=z"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompose_BareFlagHasNoEquals(t *testing.T) {
	attrs := entities.Attrs{"disabled": ""}
	got := Compose(entities.KindKey, "KEY_ROW_1_COL_1", attrs)
	want := "KEY_ROW_1_COL_1;disabled"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompose_EscapesSlashAndSemicolon(t *testing.T) {
	attrs := entities.Attrs{"file": "a/bc;d"}
	got := Compose(entities.KindLayer, "IMAGE", attrs)
	want := `IMAGE;file=a\bc^d`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestComposeParse_RoundTrip(t *testing.T) {
	attrs := entities.Attrs{"layer": "1", "colorize": "white", "margin": "5,5,5,5"}
	basename := Compose(entities.KindLayer, "IMAGE", attrs)

	r := Parse(basename, nil, nil)
	if r.Outcome != Parsed {
		t.Fatalf("expected Parsed, got %v (err=%v)", r.Outcome, r.Err)
	}
	for k, v := range attrs {
		if r.Attrs[k] != v {
			t.Fatalf("round-trip mismatch on %q: got %q, want %q", k, r.Attrs[k], v)
		}
	}

	recomposed := Compose(entities.KindLayer, r.Main, r.Attrs)
	if recomposed != basename {
		t.Fatalf("compose(parse(x)) != x: got %q, want %q", recomposed, basename)
	}
}
