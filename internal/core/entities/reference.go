package entities

import "fmt"

// ReferenceGraph tracks the `ref=` edges between live entities, using each
// entity's filesystem path as its node identity. It exists purely for cache
// invalidation (§9: "back-pointers... never for ownership") — deleting a
// target invalidates every referrer, and re-pointing a referrer forgets the
// old edge.
type ReferenceGraph struct {
	// targets maps a referrer's path to the path it currently points at.
	targets map[string]string

	// referencedBy maps a target's path to the set of paths that refer to it.
	referencedBy map[string]map[string]bool
}

// NewReferenceGraph returns an empty graph.
func NewReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{
		targets:      make(map[string]string),
		referencedBy: make(map[string]map[string]bool),
	}
}

// ErrCycle is returned by SetRef when the new edge would close a cycle.
var ErrCycle = fmt.Errorf("cyclic reference")

// SetRef records that referrer points at target, replacing any previous
// edge from referrer. It rejects the edge (and leaves the graph unchanged)
// if following target's own chain of refs would eventually reach referrer
// again, per §3's "cyclic references are prohibited". The DFS is bounded by
// the number of distinct nodes currently known, so a corrupt graph can
// never spin forever.
func (g *ReferenceGraph) SetRef(referrer, target string) error {
	if referrer == target {
		return ErrCycle
	}
	seen := make(map[string]bool, len(g.targets)+1)
	cur := target
	for i := 0; i <= len(g.targets); i++ {
		if cur == referrer {
			return ErrCycle
		}
		if seen[cur] {
			break // a cycle exists elsewhere in the graph, unrelated to this edge
		}
		seen[cur] = true
		next, ok := g.targets[cur]
		if !ok {
			break
		}
		cur = next
	}

	g.ClearRef(referrer)
	g.targets[referrer] = target
	if g.referencedBy[target] == nil {
		g.referencedBy[target] = make(map[string]bool)
	}
	g.referencedBy[target][referrer] = true
	return nil
}

// ClearRef removes any edge originating from referrer.
func (g *ReferenceGraph) ClearRef(referrer string) {
	target, ok := g.targets[referrer]
	if !ok {
		return
	}
	delete(g.targets, referrer)
	if set := g.referencedBy[target]; set != nil {
		delete(set, referrer)
		if len(set) == 0 {
			delete(g.referencedBy, target)
		}
	}
}

// ReferencedBy returns every path that currently points at target.
func (g *ReferenceGraph) ReferencedBy(target string) []string {
	set := g.referencedBy[target]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// RemoveEntity forgets every edge touching path, whether path was a
// referrer, a target, or both (called when an entity is deleted).
func (g *ReferenceGraph) RemoveEntity(path string) {
	g.ClearRef(path)
	for referrer := range g.referencedBy[path] {
		delete(g.targets, referrer)
	}
	delete(g.referencedBy, path)
}

// WaitingRef parks a referrer whose `ref=` target does not exist yet.
// It is registered on the nearest ancestor in whose subtree the referent
// would appear — the HolderPath — so that creating the referent later
// (anywhere under HolderPath) triggers re-resolution (§3, GLOSSARY).
type WaitingRef struct {
	ReferrerPath string
	HolderPath   string
	Selector     string
	Kind         Kind
}

// WaitingSet indexes parked references by the holder responsible for
// waking them up.
type WaitingSet struct {
	byHolder map[string][]WaitingRef
}

// NewWaitingSet returns an empty set.
func NewWaitingSet() *WaitingSet {
	return &WaitingSet{byHolder: make(map[string][]WaitingRef)}
}

// Park registers w under its holder.
func (w *WaitingSet) Park(ref WaitingRef) {
	w.byHolder[ref.HolderPath] = append(w.byHolder[ref.HolderPath], ref)
}

// Drain returns and removes every waiting reference parked on holder,
// called after an entity is created under that holder so the reconciler
// can retry resolving them.
func (w *WaitingSet) Drain(holder string) []WaitingRef {
	refs := w.byHolder[holder]
	delete(w.byHolder, holder)
	return refs
}

// Forget removes every waiting entry for the given referrer, regardless of
// holder (used when the referrer itself is deleted or re-parsed cleanly).
func (w *WaitingSet) Forget(referrerPath string) {
	for holder, refs := range w.byHolder {
		out := refs[:0]
		for _, r := range refs {
			if r.ReferrerPath != referrerPath {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			delete(w.byHolder, holder)
		} else {
			w.byHolder[holder] = out
		}
	}
}
