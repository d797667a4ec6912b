package pagestate

import "testing"

func TestPushOpaqueIdempotent(t *testing.T) {
	m := New()
	if !m.PushOpaque(1) {
		t.Fatal("first push should apply")
	}
	if m.PushOpaque(1) {
		t.Fatal("pushing the same opaque page again should be a no-op")
	}
	cur, ok := m.Current()
	if !ok || cur.Page != 1 {
		t.Fatalf("Current = %+v, %v", cur, ok)
	}
}

func TestVisiblePagesWithOverlay(t *testing.T) {
	m := New()
	m.PushOpaque(1)
	m.PushOverlay(2)
	vis := m.VisiblePages()
	if len(vis) != 2 || vis[0].Page != 1 || vis[1].Page != 2 {
		t.Fatalf("VisiblePages = %+v", vis)
	}
}

func TestVisiblePagesResetsOnOpaque(t *testing.T) {
	m := New()
	m.PushOpaque(1)
	m.PushOverlay(2)
	m.PushOpaque(3)
	vis := m.VisiblePages()
	if len(vis) != 1 || vis[0].Page != 3 {
		t.Fatalf("VisiblePages = %+v, want only page 3", vis)
	}
}

func TestBackNoopOnSingleFrame(t *testing.T) {
	m := New()
	m.PushOpaque(1)
	if _, ok := m.Back(); ok {
		t.Fatal("Back on a single-frame history should be a no-op")
	}
}

func TestBackPopsOverlay(t *testing.T) {
	m := New()
	m.PushOpaque(1)
	m.PushOverlay(2)
	popped, ok := m.Back()
	if !ok || popped.Page != 2 {
		t.Fatalf("Back = %+v, %v", popped, ok)
	}
	cur, _ := m.Current()
	if cur.Page != 1 {
		t.Fatalf("Current after Back = %+v, want page 1", cur)
	}
}

func TestKeyVisibleBlockedByOverlayContent(t *testing.T) {
	m := New()
	m.PushOpaque(1)
	m.PushOverlay(2)

	hasContent := func(page, row, col int) bool {
		return page == 2 && row == 0 && col == 0
	}
	vis := m.KeyVisible(1, 0, 0, hasContent)
	if vis.Visible {
		t.Fatal("key on the base page should be hidden by overlay content above it")
	}

	vis2 := m.KeyVisible(1, 0, 1, hasContent)
	if !vis2.Visible {
		t.Fatal("key at a different coordinate should remain visible")
	}
}

func TestBleedThroughTarget(t *testing.T) {
	m := New()
	m.PushOpaque(1)
	m.PushOverlay(2)

	hasContent := func(page, row, col int) bool {
		return page == 1 && row == 0 && col == 0
	}
	page, ok := m.BleedThroughTarget(2, 0, 0, hasContent)
	if !ok || page != 1 {
		t.Fatalf("BleedThroughTarget = %d, %v, want 1, true", page, ok)
	}
}

func TestPrevNext(t *testing.T) {
	m := New()
	m.PushOpaque(2)
	exists := func(p int) bool { return p == 1 || p == 2 || p == 3 }

	if p, ok := m.Prev(exists); !ok || p != 1 {
		t.Fatalf("Prev = %d, %v", p, ok)
	}
	if p, ok := m.Next(exists); !ok || p != 3 {
		t.Fatalf("Next = %d, %v", p, ok)
	}

	noneExists := func(p int) bool { return false }
	if _, ok := m.Prev(noneExists); ok {
		t.Fatal("Prev should report false when the target page doesn't exist")
	}
}
