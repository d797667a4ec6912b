// Package pagestate implements the page/overlay state machine of spec.md
// §4.7: the page-history stack, the visible-pages suffix it derives, and
// the per-key visibility function keys are rendered against. Grounded on
// the teacher's entities/graph.go adjacency-bookkeeping style, adapted
// here from a DAG to a simple stack (DESIGN.md).
package pagestate

import "fmt"

// Frame is one entry of the page history: a page number and whether it is
// transparent (an overlay).
type Frame struct {
	Page      int
	Transparent bool
}

// Machine owns the page_history list (§4.7). The zero Machine has no
// current page; call Push with the first page to start.
type Machine struct {
	history []Frame
}

// New returns an empty Machine.
func New() *Machine { return &Machine{} }

// Current returns the top of history, and false if history is empty.
func (m *Machine) Current() (Frame, bool) {
	if len(m.history) == 0 {
		return Frame{}, false
	}
	return m.history[len(m.history)-1], true
}

// VisiblePages returns the suffix of page_history starting from the last
// non-transparent entry (inclusive) through the top, per §4.7's GLOSSARY
// definition of "visible stack": "the suffix of the page-history ending at
// the most recent opaque page, plus every transparent page above it."
// Returned bottom-to-top (index 0 is the opaque base).
func (m *Machine) VisiblePages() []Frame {
	for i := len(m.history) - 1; i >= 0; i-- {
		if !m.history[i].Transparent {
			out := make([]Frame, len(m.history)-i)
			copy(out, m.history[i:])
			return out
		}
	}
	if len(m.history) == 0 {
		return nil
	}
	// Every frame so far is transparent (e.g. the very first push was an
	// overlay, an edge case the daemon should still render sanely): treat
	// the whole history as visible.
	out := make([]Frame, len(m.history))
	copy(out, m.history)
	return out
}

// PushOpaque transitions to page n as an opaque page: "Push (N, false) if
// not already current; unrender previous visible stack; render new" (§4.7
// table). It reports whether a push actually happened (false if n was
// already current).
func (m *Machine) PushOpaque(n int) bool {
	if cur, ok := m.Current(); ok && !cur.Transparent && cur.Page == n {
		return false
	}
	m.history = append(m.history, Frame{Page: n, Transparent: false})
	return true
}

// PushOverlay transitions to page n as a transparent overlay, keeping the
// underlying stack rendered (§4.7 table).
func (m *Machine) PushOverlay(n int) {
	m.history = append(m.history, Frame{Page: n, Transparent: true})
}

// Back pops until a different (page, transparent) pair is found, per
// §4.7's `__back__` row and §8's "Back navigation" testable property: a
// stack of length < 2 is a no-op. It reports the popped frame (the one
// that was current before popping) and whether a pop happened.
func (m *Machine) Back() (popped Frame, ok bool) {
	if len(m.history) < 2 {
		return Frame{}, false
	}
	popped = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	// Pop further only if we land on an identical pair to what we just
	// removed (mirrors "pop until a different pair is found" when
	// consecutive duplicate pushes exist).
	for len(m.history) > 1 {
		top := m.history[len(m.history)-1]
		if top != popped {
			break
		}
		m.history = m.history[:len(m.history)-1]
	}
	return popped, true
}

// Visibility describes where a key's page sits relative to the visible
// stack, per §4.7's key visibility function.
type Visibility struct {
	Visible      bool
	OverlayLevel int // index within VisiblePages(), 0 = the opaque base
}

// KeyVisible resolves visibility for a key whose page is pageNum, given the
// content predicate hasContent(page, row, col) the caller supplies (since
// pagestate has no knowledge of entity content). Implements §4.7 verbatim:
// "if the key's page is not in visible_pages, invisible; scan visible_pages
// from top; if any page above the key's page has a key (r,c) with content,
// the lower key is invisible; otherwise the key is visible."
func (m *Machine) KeyVisible(pageNum, row, col int, hasContent func(page, row, col int) bool) Visibility {
	stack := m.VisiblePages()
	idx := -1
	for i, f := range stack {
		if f.Page == pageNum {
			idx = i
		}
	}
	if idx < 0 {
		return Visibility{Visible: false}
	}
	for i := len(stack) - 1; i > idx; i-- {
		if hasContent(stack[i].Page, row, col) {
			return Visibility{Visible: false}
		}
	}
	return Visibility{Visible: true, OverlayLevel: idx}
}

// BleedThroughTarget finds the highest page below pageNum in the current
// visible stack whose key (row, col) has content — the key that must be
// re-rendered to replace a vacated cell when a key becomes invisible
// (GLOSSARY: "Bleed-through target").
func (m *Machine) BleedThroughTarget(pageNum, row, col int, hasContent func(page, row, col int) bool) (page int, ok bool) {
	stack := m.VisiblePages()
	idx := -1
	for i, f := range stack {
		if f.Page == pageNum {
			idx = i
		}
	}
	if idx < 0 {
		return 0, false
	}
	for i := idx - 1; i >= 0; i-- {
		if hasContent(stack[i].Page, row, col) {
			return stack[i].Page, true
		}
	}
	return 0, false
}

// First returns the no-op-checked request code `__first__`'s target: the
// caller supplies the smallest available page number (pagestate has no
// inventory of which pages exist).
func First(smallest int) int { return smallest }

// Prev and Next implement the `__prev__`/`__next__` codes: jump to
// current±1 if that page exists, per §4.7's table. exists is supplied by
// the caller (the reconciler, which owns the entity tree).
func (m *Machine) Prev(exists func(page int) bool) (int, bool) {
	cur, ok := m.Current()
	if !ok {
		return 0, false
	}
	if exists(cur.Page - 1) {
		return cur.Page - 1, true
	}
	return 0, false
}

func (m *Machine) Next(exists func(page int) bool) (int, bool) {
	cur, ok := m.Current()
	if !ok {
		return 0, false
	}
	if exists(cur.Page + 1) {
		return cur.Page + 1, true
	}
	return 0, false
}

// String renders the history for debug logging.
func (m *Machine) String() string {
	return fmt.Sprintf("%v", m.history)
}
