package treedump

import (
	"strings"
	"testing"
)

func TestDumpDeckSnapshot(t *testing.T) {
	snap := DeckSnapshot{
		Serial:     "ABC123",
		Rows:       3,
		Cols:       5,
		Brightness: 80,
		Pages: []PageSnapshot{
			{Number: 1, Name: "main", Keys: []KeySnapshot{{Row: 1, Col: 1, Layers: 2}}},
		},
	}

	out := Dump(snap)
	if !strings.Contains(out, "ser:ABC123") {
		t.Errorf("dump missing serial field: %s", out)
	}
	if !strings.Contains(out, "br:80") {
		t.Errorf("dump missing brightness field: %s", out)
	}
}

func TestDumpEmptyDeck(t *testing.T) {
	out := Dump(DeckSnapshot{})
	if out == "" {
		t.Error("dump of empty snapshot should not be empty")
	}
}

func TestIsSimpleString(t *testing.T) {
	cases := map[string]bool{
		"":               false,
		"abc":            true,
		"ABC123":         true,
		"a b":            false,
		"key/value.path": true,
	}
	for in, want := range cases {
		if got := isSimpleString(in); got != want {
			t.Errorf("isSimpleString(%q) = %v, want %v", in, got, want)
		}
	}
}
