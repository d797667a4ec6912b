package reconcile

import (
	"path/filepath"

	"github.com/twidi/streamdeckfs-go/internal/adapters/config"
	"github.com/twidi/streamdeckfs-go/internal/adapters/fswatch"
	"github.com/twidi/streamdeckfs-go/internal/adapters/statefile"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// handleSelfRemoved reacts to a watched directory vanishing out from under
// its own subscription (§4.3): folded into the same cascade as its parent
// observing the equivalent DirRemoved.
func (r *Reconciler) handleSelfRemoved(path string) {
	r.handleRemoved(filepath.Dir(path), filepath.Base(path))
}

// handleRemoved drops one candidate from whichever VersionSlot holds it,
// promoting the next candidate if the removed one was active, and
// cascading to an entity's own children when it was a directory-backed
// Page or Key.
func (r *Reconciler) handleRemoved(dir, name string) {
	if statefile.IsReserved(name) || name == config.ModelFileName {
		return
	}
	path := filepath.Join(dir, name)
	r.unpark(dir, name)

	if n, ok := r.tree.byDir[path]; ok {
		r.removeDirNode(n)
		return
	}
	if n, ok := r.tree.node(dir); ok {
		r.removeLeaf(n, path)
	}
}

// unpark drops a basename from the waiting list; a removed file can no
// longer be the thing a parked name was retrying against.
func (r *Reconciler) unpark(dir, name string) {
	out := r.pendingList[:0]
	for _, p := range r.pendingList {
		if p.dir != dir || p.name != name {
			out = append(out, p)
		}
	}
	r.pendingList = out
}

// removeDirNode cascades the removal of a Page or Key directory: children
// are forgotten first, then the directory itself is dropped from its
// parent's VersionSlot, unwatched, and its parent's new active candidate
// (if any) is promoted.
func (r *Reconciler) removeDirNode(n *node) {
	switch n.kind {
	case entities.KindPage:
		for _, kslot := range n.page.Keys {
			for _, c := range append([]entities.Entity(nil), kslot.Candidates...) {
				if kn, ok := r.tree.byDir[c.Path()]; ok {
					r.removeDirNode(kn)
				} else {
					r.forgetEntityPath(c.Path())
				}
			}
		}
		r.forgetEntityPath(n.path)
		_ = r.watcher.SetMode(n.path, fswatch.ModeNone)
		delete(r.tree.byDir, n.path)

		slot, ok := n.deck.Pages[n.page.ID]
		if !ok {
			return
		}
		wasActive := slot.Remove(n.path)
		if slot.Empty() {
			delete(n.deck.Pages, n.page.ID)
		} else if wasActive {
			r.promotePage(n.deck, n.page.ID, slot)
		}

	case entities.KindKey:
		r.forgetKeyChildren(n.key)
		r.forgetEntityPath(n.path)
		_ = r.watcher.SetMode(n.path, fswatch.ModeNone)
		delete(r.tree.byDir, n.path)

		slot, ok := n.page.Keys[n.key.ID]
		if !ok {
			return
		}
		wasActive := slot.Remove(n.path)
		if slot.Empty() {
			delete(n.page.Keys, n.key.ID)
		} else if wasActive {
			r.promoteKey(n.page, n.key.ID, slot)
		}
	}
}

func (r *Reconciler) forgetKeyChildren(k *entities.Key) {
	for _, slot := range k.Layers {
		for _, c := range slot.Candidates {
			r.forgetEntityPath(c.Path())
		}
	}
	for _, slot := range k.Lines {
		for _, c := range slot.Candidates {
			r.forgetEntityPath(c.Path())
			r.disarmScroller(c.Path())
		}
	}
	for _, slot := range k.Events {
		for _, c := range slot.Candidates {
			r.forgetEntityPath(c.Path())
		}
	}
	for _, slot := range k.Vars {
		for _, c := range slot.Candidates {
			r.forgetEntityPath(c.Path())
		}
	}
}

// forgetEntityPath retires one entity's ref= bookkeeping and re-parks every
// entity whose ref= selector pointed at it, since their merged attributes
// are now stale and must be recomputed (or parked again) on replay.
func (r *Reconciler) forgetEntityPath(path string) {
	for _, dep := range r.tree.dependentsOf(path) {
		r.park(filepath.Dir(dep), filepath.Base(dep))
	}
	r.tree.forgetActive(path)
}

// removeFromSlots scans every VersionSlot in m for a candidate at path,
// removes it from whichever slot holds it, and reports that slot plus
// whether the removed candidate had been the active one.
func removeFromSlots[K comparable](m map[K]*entities.VersionSlot, path string) (slot *entities.VersionSlot, wasActive, found bool) {
	for _, s := range m {
		for _, c := range s.Candidates {
			if c.Path() == path {
				wasActive = s.Remove(path)
				return s, wasActive, true
			}
		}
	}
	return nil, false, false
}

// removeLeaf drops a Layer, TextLine, Event, or Var candidate living
// directly in node n's maps and applies whatever side effect its removal
// or promotion requires.
func (r *Reconciler) removeLeaf(n *node, path string) {
	r.forgetEntityPath(path)

	switch n.kind {
	case entities.KindKey:
		if slot, wasActive, found := removeFromSlots(n.key.Layers, path); found {
			if slot.Empty() {
				deleteEmptyLayer(n.key.Layers)
			}
			if wasActive {
				r.renderKey(n.page, n.key, n.key.ID.Row, n.key.ID.Col)
			}
			return
		}
		if slot, wasActive, found := removeFromSlots(n.key.Lines, path); found {
			r.disarmScroller(path)
			if slot.Empty() {
				deleteEmptyLine(n.key.Lines)
			}
			if wasActive {
				if t, ok := slot.Active().(*entities.TextLine); ok && t.Scrollable() {
					r.armScroller(n.key, t)
				}
				r.renderKey(n.page, n.key, n.key.ID.Row, n.key.ID.Col)
			}
			return
		}
		if removeEventLeaf(r, n.key.Events, path, n, nil) {
			return
		}
		removeFromSlots(n.key.Vars, path)

	case entities.KindPage:
		if removeEventLeaf(r, n.page.Events, path, n, nil) {
			return
		}
		removeFromSlots(n.page.Vars, path)

	case entities.KindDeck:
		if removeEventLeaf(r, n.deck.Events, path, n, nil) {
			return
		}
		removeFromSlots(n.deck.Vars, path)
	}
}

// removeEventLeaf handles the shared Event-map removal/promotion logic for
// all three owning scopes (deck, page, key). It deactivates a removed
// active Start event and triggers a newly promoted one, per §4.9's Start
// lifecycle.
func removeEventLeaf(r *Reconciler, m map[entities.EventKind]*entities.VersionSlot, path string, n *node, _ *entities.Event) bool {
	for kind, slot := range m {
		for _, c := range slot.Candidates {
			if c.Path() != path {
				continue
			}
			old, _ := c.(*entities.Event)
			wasActive := slot.Remove(path)
			if slot.Empty() {
				delete(m, kind)
			}
			if wasActive {
				if old != nil && old.EventKind == entities.EventStart {
					r.runtime.DeactivateStart(old)
				}
				if newActive, ok := slot.Active().(*entities.Event); ok && newActive.EventKind == entities.EventStart {
					r.runtime.Trigger(newActive, r.sdfsContext(n, newActive), nil)
				}
			}
			return true
		}
	}
	return false
}

func (r *Reconciler) promotePage(deck *entities.Deck, id entities.PageID, slot *entities.VersionSlot) {
	p, ok := slot.Active().(*entities.Page)
	if !ok {
		return
	}
	pn := &node{kind: entities.KindPage, path: p.Path(), deck: deck, page: p}
	r.tree.byDir[p.Path()] = pn
	r.tree.recordActive(p.Path(), p.Attrs, p.RefTarget)
	_ = r.watcher.SetMode(p.Path(), fswatch.ModeAll)
}

func (r *Reconciler) promoteKey(page *entities.Page, id entities.KeyID, slot *entities.VersionSlot) {
	k, ok := slot.Active().(*entities.Key)
	if !ok {
		return
	}
	kn := &node{kind: entities.KindKey, path: k.Path(), deck: page.Parent, page: page, key: k}
	r.tree.byDir[k.Path()] = kn
	r.tree.recordActive(k.Path(), k.Attrs, k.RefTarget)
	_ = r.watcher.SetMode(k.Path(), fswatch.ModeAll)
	r.renderKey(page, k, id.Row, id.Col)
}

func deleteEmptyLayer(m map[entities.LayerID]*entities.VersionSlot) {
	for k, s := range m {
		if s.Empty() {
			delete(m, k)
		}
	}
}

func deleteEmptyLine(m map[entities.LineID]*entities.VersionSlot) {
	for k, s := range m {
		if s.Empty() {
			delete(m, k)
		}
	}
}
