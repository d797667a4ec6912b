package reconcile

import (
	"path/filepath"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// keyAt implements dispatch.Handlers.KeyAt: resolve (row,col) to the
// currently visible key's active press/longpress/release events. A key
// hidden by an overlay above it (per §4.7) is treated as absent, since it
// cannot receive input.
func (r *Reconciler) keyAt(row, col int) (press, longpress, release *entities.Event, ok bool) {
	frame, frameOK := r.pages.Current()
	if !frameOK {
		return nil, nil, nil, false
	}
	page, key, found := r.keyAtPage(frame.Page, row, col)
	if !found {
		return nil, nil, nil, false
	}
	vis := r.pages.KeyVisible(int(page.ID), row, col, r.hasContent)
	if !vis.Visible {
		return nil, nil, nil, false
	}

	press = activeEvent(key.Events, entities.EventPress)
	longpress = activeEvent(key.Events, entities.EventLongPress)
	release = activeEvent(key.Events, entities.EventRelease)
	return press, longpress, release, true
}

func activeEvent(m map[entities.EventKind]*entities.VersionSlot, kind entities.EventKind) *entities.Event {
	slot, ok := m[kind]
	if !ok {
		return nil
	}
	ev, ok := slot.Active().(*entities.Event)
	if !ok {
		return nil
	}
	return ev
}

// runPress/runLongpress/runRelease adapt dispatch's Handlers shape to the
// action runtime's Trigger call, building the event's SDFS context from the
// key node it lives under.
func (r *Reconciler) runPress(ev *entities.Event) {
	r.runtime.Trigger(ev, r.contextForEvent(ev), nil)
}

func (r *Reconciler) runLongpress(ev *entities.Event) {
	r.runtime.Trigger(ev, r.contextForEvent(ev), nil)
}

func (r *Reconciler) runRelease(ev *entities.Event, pressDurationMS int64) {
	ctx := r.contextForEvent(ev)
	ctx.PressDurationMS = pressDurationMS
	r.runtime.Trigger(ev, ctx, nil)
}

// contextForEvent finds the node owning ev (its parent directory) and
// builds the SDFS context from it. Events are always direct children of a
// deck/page/key directory, so the event's own path's directory is the
// owning node's path.
func (r *Reconciler) contextForEvent(ev *entities.Event) entities.SDFSContext {
	n, ok := r.tree.node(filepath.Dir(ev.Path()))
	if !ok {
		return entities.SDFSContext{Serial: r.tree.root.deck.Serial}
	}
	return r.sdfsContext(n, ev)
}
