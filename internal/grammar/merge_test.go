package grammar

import "testing"

func TestFoldSubKeys_OverridesOneComponent(t *testing.T) {
	args := map[string]string{
		"margin":      "5,5,5,5",
		"margin.top":  "15",
	}
	out := foldSubKeys(args)
	if out["margin"] != "15,5,5,5" {
		t.Fatalf("got margin=%q", out["margin"])
	}
}

func TestFoldSubKeys_NoBaseValueDefaultsToEmptyComponents(t *testing.T) {
	args := map[string]string{"margin.left": "3"}
	out := foldSubKeys(args)
	if out["margin"] != ",,,3" {
		t.Fatalf("got margin=%q", out["margin"])
	}
}

func TestFoldSubKeys_CoordsByNumericIndex(t *testing.T) {
	args := map[string]string{
		"coords":   "0,0,10,10",
		"coords.2": "50",
	}
	out := foldSubKeys(args)
	if out["coords"] != "0,0,50,10" {
		t.Fatalf("got coords=%q", out["coords"])
	}
}

func TestFoldSubKeys_PassesThroughPlainKeys(t *testing.T) {
	args := map[string]string{"name": "icon", "disabled": ""}
	out := foldSubKeys(args)
	if out["name"] != "icon" || out["disabled"] != "" {
		t.Fatalf("got %v", out)
	}
}
