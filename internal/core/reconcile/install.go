package reconcile

import (
	"os"
	"path/filepath"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/adapters/config"
	"github.com/twidi/streamdeckfs-go/internal/adapters/fswatch"
	"github.com/twidi/streamdeckfs-go/internal/adapters/statefile"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/grammar"
)

// handleAddOrChange implements §4.4's "locate parent entity by path; parse
// child name via the grammar package using the parent's available
// variables" for one basename.
func (r *Reconciler) handleAddOrChange(dir, name string) {
	if statefile.IsReserved(name) || name == config.ModelFileName {
		return
	}
	n, ok := r.tree.node(dir)
	if !ok {
		// Parent directory isn't tracked yet (still waiting itself); park
		// this name so a later replay picks it up once the parent exists.
		r.park(dir, name)
		return
	}
	r.tryParse(n, dir, name)
}

// tryParse runs one basename through the grammar and installs, parks, or
// rejects it per the resulting Outcome.
func (r *Reconciler) tryParse(n *node, dir, name string) {
	path := filepath.Join(dir, name)
	ctime := ctimeOf(path)

	result := grammar.Parse(name, n.varLookup(), r.tree.refResolver())
	switch result.Outcome {
	case grammar.Parsed:
		r.install(n, path, ctime, result.Main, result.Attrs)
	case grammar.WaitVars, grammar.WaitRef:
		r.park(dir, name)
	case grammar.Reject:
		r.log.Warn("rejected basename", "path", path, "error", errString(result.Err))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func ctimeOf(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}

// install builds and inserts the right entity kind, then runs the
// activation side effects for whichever kind just changed.
func (r *Reconciler) install(n *node, path string, ctime time.Time, main string, attrs entities.Attrs) {
	kind, pageID, keyID, eventKind, varName, ok := childKind(main, n.kind)
	if !ok {
		r.log.Warn("unrecognized basename", "path", path, "main", main)
		return
	}

	switch kind {
	case entities.KindPage:
		r.installPage(n, path, ctime, pageID, attrs)
	case entities.KindKey:
		r.installKey(n, path, ctime, keyID, attrs)
	case entities.KindLayer:
		r.installLayer(n, path, ctime, attrs)
	case entities.KindTextLine:
		r.installTextLine(n, path, ctime, attrs)
	case entities.KindEvent:
		r.installEvent(n, path, ctime, eventKind, attrs)
	case entities.KindVar:
		r.installVar(n, path, ctime, varName, attrs)
	}
}

func (r *Reconciler) installPage(n *node, path string, ctime time.Time, id entities.PageID, attrs entities.Attrs) {
	p, err := entities.NewPage(path, ctime, id, attrs)
	if err != nil {
		r.log.Warn("invalid page", "path", path, "error", err.Error())
		return
	}
	p.Parent = n.deck
	slot, ok := n.deck.Pages[id]
	if !ok {
		slot = &entities.VersionSlot{}
		n.deck.Pages[id] = slot
	}
	slot.Add(p)
	r.tree.recordActive(path, attrs, p.RefTarget)

	if slot.Active() == p {
		pn := &node{kind: entities.KindPage, path: path, deck: n.deck, page: p}
		r.tree.byDir[path] = pn
		_ = r.watcher.SetMode(path, fswatch.ModeAll)
	}
}

func (r *Reconciler) installKey(n *node, path string, ctime time.Time, id entities.KeyID, attrs entities.Attrs) {
	if !id.InGrid(n.deck.Rows, n.deck.Cols) {
		r.log.Warn("key outside grid", "path", path, "row", id.Row, "col", id.Col)
		return
	}
	k, err := entities.NewKey(path, ctime, id, attrs)
	if err != nil {
		r.log.Warn("invalid key", "path", path, "error", err.Error())
		return
	}
	k.Parent = n.page
	slot, ok := n.page.Keys[id]
	if !ok {
		slot = &entities.VersionSlot{}
		n.page.Keys[id] = slot
	}
	slot.Add(k)
	r.tree.recordActive(path, attrs, k.RefTarget)

	if slot.Active() == k {
		kn := &node{kind: entities.KindKey, path: path, deck: n.deck, page: n.page, key: k}
		r.tree.byDir[path] = kn
		_ = r.watcher.SetMode(path, fswatch.ModeAll)
		r.renderKey(n.page, k, id.Row, id.Col)
	}
}

func (r *Reconciler) installLayer(n *node, path string, ctime time.Time, attrs entities.Attrs) {
	l, err := entities.NewLayer(path, ctime, attrs)
	if err != nil {
		r.log.Warn("invalid layer", "path", path, "error", err.Error())
		return
	}
	slot, ok := n.key.Layers[l.ID]
	if !ok {
		slot = &entities.VersionSlot{}
		n.key.Layers[l.ID] = slot
	}
	slot.Add(l)
	r.tree.recordActive(path, attrs, l.RefTarget)
	if slot.Active() == l {
		r.renderKey(parentPage(n), n.key, n.key.ID.Row, n.key.ID.Col)
	}
}

func (r *Reconciler) installTextLine(n *node, path string, ctime time.Time, attrs entities.Attrs) {
	t, err := entities.NewTextLine(path, ctime, attrs)
	if err != nil {
		r.log.Warn("invalid text line", "path", path, "error", err.Error())
		return
	}
	if t.Args.File != "" && t.Args.File != "__inside__" {
		if data, err := os.ReadFile(t.Args.File); err == nil {
			t.Args.Text = string(data)
		}
	}
	slot, ok := n.key.Lines[t.ID]
	if !ok {
		slot = &entities.VersionSlot{}
		n.key.Lines[t.ID] = slot
	}
	slot.Add(t)
	r.tree.recordActive(path, attrs, t.RefTarget)
	if slot.Active() == t {
		if t.Scrollable() {
			r.armScroller(n.key, t)
		}
		r.renderKey(parentPage(n), n.key, n.key.ID.Row, n.key.ID.Col)
	}
}

func (r *Reconciler) installEvent(n *node, path string, ctime time.Time, kind entities.EventKind, attrs entities.Attrs) {
	ev, err := entities.NewEvent(path, ctime, kind, attrs)
	if err != nil {
		r.log.Warn("invalid event", "path", path, "error", err.Error())
		return
	}

	var events map[entities.EventKind]*entities.VersionSlot
	switch n.kind {
	case entities.KindDeck:
		events = n.deck.Events
	case entities.KindPage:
		events = n.page.Events
	case entities.KindKey:
		events = n.key.Events
	}
	slot, ok := events[kind]
	if !ok {
		slot = &entities.VersionSlot{}
		events[kind] = slot
	}
	slot.Add(ev)
	r.tree.recordActive(path, attrs, ev.RefTarget)

	if slot.Active() == ev && kind == entities.EventStart {
		r.runtime.Trigger(ev, r.sdfsContext(n, nil), nil)
	}
}

func (r *Reconciler) installVar(n *node, path string, ctime time.Time, name entities.VarName, attrs entities.Attrs) {
	v, err := entities.NewVar(path, ctime, name, attrs)
	if err != nil {
		r.log.Warn("invalid var", "path", path, "error", err.Error())
		return
	}
	v.LoadContent()

	var vars map[entities.VarName]*entities.VersionSlot
	switch n.kind {
	case entities.KindDeck:
		vars = n.deck.Vars
	case entities.KindPage:
		vars = n.page.Vars
	case entities.KindKey:
		vars = n.key.Vars
	}
	slot, ok := vars[name]
	if !ok {
		slot = &entities.VersionSlot{}
		vars[name] = slot
	}
	slot.Add(v)
	r.tree.recordActive(path, attrs, v.RefTarget)
}

func parentPage(n *node) *entities.Page { return n.page }

// park records a basename that could not yet be resolved into the global
// retry list, deduplicated by (dir, name).
func (r *Reconciler) park(dir, name string) {
	for _, p := range r.pendingList {
		if p.dir == dir && p.name == name {
			return
		}
	}
	r.pendingList = append(r.pendingList, pending{dir: dir, name: name})
}

// replayPending retries every parked basename once. tryParse re-parks
// anything still unresolved via park(), so snapshotting the list and
// clearing it first (rather than filtering in place) avoids mutating the
// slice out from under the very range loop that feeds it. This runs after
// every handled event, per §4.4's "replay parked filenames when a waiting
// reference/variable resolves."
func (r *Reconciler) replayPending() {
	if len(r.pendingList) == 0 {
		return
	}
	snapshot := r.pendingList
	r.pendingList = nil
	for _, p := range snapshot {
		n, ok := r.tree.node(p.dir)
		if !ok {
			r.pendingList = append(r.pendingList, p)
			continue
		}
		r.tryParse(n, p.dir, p.name)
	}
}
