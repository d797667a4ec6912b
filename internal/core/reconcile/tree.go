package reconcile

import (
	"strings"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// node indexes one directory-backed entity (a Deck, Page, or Key) so a
// filesystem event naming that directory as its Dir can find the right
// parent to install a child into. Layers, TextLines, Events, and Vars live
// only inside their parent's own maps — they are not separately indexed
// since they never host children of their own.
type node struct {
	kind entities.Kind
	path string

	deck *entities.Deck
	page *entities.Page
	key  *entities.Key
}

// varLookup builds the grammar.VarLookup for basenames encountered directly
// inside this node's directory: `$VAR_*` cascades via the existing entity
// LookupVar chain (key -> page -> deck), and `$SDFS_*` resolves against this
// node's own ambient context (§3: "Environment-style read-only variables
// prefixed SDFS_ ... are also substitutable").
func (n *node) varLookup() func(name string) (string, bool) {
	return func(name string) (string, bool) {
		if strings.HasPrefix(name, "SDFS_") {
			return n.sdfsLookup(name)
		}
		vn := entities.VarName(name)
		switch n.kind {
		case entities.KindKey:
			if v, ok := n.key.LookupVar(vn); ok {
				return v.Value(), true
			}
		case entities.KindPage:
			if v, ok := n.page.LookupVar(vn); ok {
				return v.Value(), true
			}
		case entities.KindDeck:
			if v, ok := n.deck.LookupVar(vn); ok {
				return v.Value(), true
			}
		}
		return "", false
	}
}

// sdfsLookup resolves an `SDFS_*` name against this node's own ambient
// context — the deck/page/key it is scoped to, without any event-specific
// fields (those only exist once an event actually fires; see
// Reconciler.sdfsContext for that richer context).
func (n *node) sdfsLookup(name string) (string, bool) {
	ctx := entities.SDFSContext{Serial: n.deck.Serial}
	if n.page != nil {
		ctx.PageNumber = int(n.page.ID)
		ctx.PageName = n.page.Name()
		ctx.PageDirectory = n.page.Path()
	}
	if n.key != nil {
		ctx.KeyRow, ctx.KeyCol = n.key.ID.Row, n.key.ID.Col
		ctx.KeyName = n.key.Name()
	}
	return ctx.LookupSDFS(name)
}

// Tree owns the single Deck and the path index used to resolve a watcher
// event's Dir to the node whose children are being scanned.
type Tree struct {
	root  *node
	byDir map[string]*node

	// byPath indexes every currently active entity's resolved attribute
	// bag by its file path, for ref= resolution (§4.2's "ref=" selector is
	// treated here as the absolute path of the target file, consistent
	// with every other cross-entity reference in the tree being
	// path-addressed).
	byPath map[string]entities.Attrs

	// refDependents maps a target path to every entity path whose ref=
	// currently resolves to it, so a deletion can push dependents back to
	// waiting instead of leaving them with stale merged attrs.
	refDependents map[string][]string
}

func newTree(deck *entities.Deck) *Tree {
	root := &node{kind: entities.KindDeck, path: deck.Path(), deck: deck}
	t := &Tree{
		root:          root,
		byDir:         map[string]*node{deck.Path(): root},
		byPath:        make(map[string]entities.Attrs),
		refDependents: make(map[string][]string),
	}
	return t
}

func (t *Tree) node(dir string) (*node, bool) {
	n, ok := t.byDir[dir]
	return n, ok
}

func (t *Tree) refResolver() func(selector string) (entities.Attrs, bool) {
	return func(selector string) (entities.Attrs, bool) {
		bag, ok := t.byPath[selector]
		return bag, ok
	}
}

func (t *Tree) recordActive(path string, attrs entities.Attrs, refTarget string) {
	t.byPath[path] = attrs
	if refTarget != "" {
		t.refDependents[refTarget] = appendUnique(t.refDependents[refTarget], path)
	}
}

func (t *Tree) forgetActive(path string) {
	delete(t.byPath, path)
	for target, deps := range t.refDependents {
		t.refDependents[target] = removeString(deps, path)
	}
}

// dependentsOf returns every entity path currently referencing target.
func (t *Tree) dependentsOf(target string) []string {
	return append([]string(nil), t.refDependents[target]...)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
