package entities

import "testing"

func TestReferenceGraph_DetectsDirectCycle(t *testing.T) {
	g := NewReferenceGraph()
	if err := g.SetRef("/a", "/b"); err != nil {
		t.Fatalf("unexpected error setting /a -> /b: %v", err)
	}
	if err := g.SetRef("/b", "/a"); err != ErrCycle {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestReferenceGraph_DetectsSelfReference(t *testing.T) {
	g := NewReferenceGraph()
	if err := g.SetRef("/a", "/a"); err != ErrCycle {
		t.Fatalf("expected ErrCycle for self-reference, got %v", err)
	}
}

func TestReferenceGraph_DetectsTransitiveCycle(t *testing.T) {
	g := NewReferenceGraph()
	mustSetRef(t, g, "/a", "/b")
	mustSetRef(t, g, "/b", "/c")
	if err := g.SetRef("/c", "/a"); err != ErrCycle {
		t.Fatalf("expected ErrCycle for transitive cycle, got %v", err)
	}
}

func TestReferenceGraph_RemoveEntityClearsBothDirections(t *testing.T) {
	g := NewReferenceGraph()
	mustSetRef(t, g, "/a", "/b")
	g.RemoveEntity("/b")
	if refs := g.ReferencedBy("/b"); len(refs) != 0 {
		t.Fatalf("expected no referrers after RemoveEntity, got %v", refs)
	}
}

func TestWaitingSet_DrainReturnsAndClears(t *testing.T) {
	w := NewWaitingSet()
	w.Park(WaitingRef{ReferrerPath: "/a", HolderPath: "/holder", Selector: "target"})

	refs := w.Drain("/holder")
	if len(refs) != 1 || refs[0].ReferrerPath != "/a" {
		t.Fatalf("expected one drained ref for /a, got %v", refs)
	}
	if refs2 := w.Drain("/holder"); len(refs2) != 0 {
		t.Fatalf("expected Drain to clear the holder, got %v", refs2)
	}
}

func TestWaitingSet_Forget(t *testing.T) {
	w := NewWaitingSet()
	w.Park(WaitingRef{ReferrerPath: "/a", HolderPath: "/holder"})
	w.Park(WaitingRef{ReferrerPath: "/b", HolderPath: "/holder"})
	w.Forget("/a")

	refs := w.Drain("/holder")
	if len(refs) != 1 || refs[0].ReferrerPath != "/b" {
		t.Fatalf("expected only /b to remain, got %v", refs)
	}
}

func mustSetRef(t *testing.T, g *ReferenceGraph, referrer, target string) {
	t.Helper()
	if err := g.SetRef(referrer, target); err != nil {
		t.Fatalf("unexpected error setting %s -> %s: %v", referrer, target, err)
	}
}
