package reconcile

import (
	"strconv"

	"github.com/twidi/streamdeckfs-go/internal/adapters/statefile"
	"github.com/twidi/streamdeckfs-go/internal/core/actions"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// onPageRequest is the action runtime's page-transition callback (§4.7's
// transition table): resolves a target (numeric id, page name, or one of
// the four navigation codes) against the live deck, applies it to the
// pagestate machine, persists `.current_page`, and re-renders every key on
// every now-visible page.
func (r *Reconciler) onPageRequest(req actions.PageRequest) {
	target, ok := r.resolveTarget(req.Target)
	if !ok {
		r.log.Warn("page request target not found", "target", req.Target)
		return
	}

	if req.Overlay {
		r.pages.PushOverlay(target)
	} else if req.Target == "__back__" {
		r.pages.Back()
	} else {
		r.pages.PushOpaque(target)
	}

	r.writeCurrentPage()
	r.renderVisible()
}

// resolveTarget implements §4.7's request-code table against the deck's
// actual page set.
func (r *Reconciler) resolveTarget(target string) (int, bool) {
	deck := r.tree.root.deck
	exists := func(n int) bool {
		slot, ok := deck.Pages[entities.PageID(n)]
		return ok && slot.Active() != nil
	}

	switch target {
	case "__first__":
		smallest := -1
		for id := range deck.Pages {
			if exists(int(id)) && (smallest == -1 || int(id) < smallest) {
				smallest = int(id)
			}
		}
		if smallest == -1 {
			return 0, false
		}
		return smallest, true
	case "__prev__":
		if _, ok := r.pages.Current(); ok {
			return r.pages.Prev(exists)
		}
		return 0, false
	case "__next__":
		if _, ok := r.pages.Current(); ok {
			return r.pages.Next(exists)
		}
		return 0, false
	case "__back__":
		if frame, ok := r.pages.Current(); ok {
			return frame.Page, true
		}
		return 0, false
	}

	if n, err := strconv.Atoi(target); err == nil {
		if exists(n) {
			return n, true
		}
		return 0, false
	}

	for id, slot := range deck.Pages {
		if p, ok := slot.Active().(*entities.Page); ok && p.Name() == target {
			return int(id), true
		}
	}
	return 0, false
}

func (r *Reconciler) writeCurrentPage() {
	frame, ok := r.pages.Current()
	if !ok {
		return
	}
	deck := r.tree.root.deck
	slot, ok := deck.Pages[entities.PageID(frame.Page)]
	if !ok {
		return
	}
	p, ok := slot.Active().(*entities.Page)
	if !ok {
		return
	}
	num := frame.Page
	name := p.Name()
	overlay := frame.Transparent
	_ = statefile.WriteCurrentPage(r.deckDir, statefile.CurrentPage{
		Number:    &num,
		Name:      &name,
		IsOverlay: &overlay,
	})
}

// renderVisible re-renders every key of every currently visible page, since
// a transition can change which page's keys are occluded without any
// filesystem event to trigger the usual per-key path.
func (r *Reconciler) renderVisible() {
	deck := r.tree.root.deck
	for _, frame := range r.pages.VisiblePages() {
		slot, ok := deck.Pages[entities.PageID(frame.Page)]
		if !ok {
			continue
		}
		p, ok := slot.Active().(*entities.Page)
		if !ok {
			continue
		}
		for id, kslot := range p.Keys {
			if k, ok := kslot.Active().(*entities.Key); ok {
				r.renderKey(p, k, id.Row, id.Col)
			}
		}
	}
}

// pollSetCurrentPage is invoked after every watch-driven change to the deck
// root so an externally written `.set_current_page` request (§4.10) is
// picked up the same way a filesystem poll would notice it.
func (r *Reconciler) pollSetCurrentPage() {
	req, ok := statefile.ReadAndClearSetCurrentPage(r.deckDir)
	if !ok {
		return
	}
	r.onPageRequest(actions.PageRequest{Target: req.Page, Overlay: req.IsOverlay})
}
