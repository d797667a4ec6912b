package reconcile

import (
	"time"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/render"
)

// renderKey runs the composition pipeline for one key and submits the
// result to the image writer, honoring §4.7's visibility function: an
// invisible key is skipped, and its bleed-through target (if any) is
// rendered in its place instead. page may be nil, in which case key.Parent
// is used (the scroll-tick path doesn't have a page handy).
func (r *Reconciler) renderKey(page *entities.Page, key *entities.Key, row, col int) {
	if page == nil {
		page = key.Parent
	}
	vis := r.pages.KeyVisible(int(page.ID), row, col, r.hasContent)
	if !vis.Visible {
		if target, ok := r.pages.BleedThroughTarget(int(page.ID), row, col, r.hasContent); ok {
			if tp, tk, ok := r.keyAtPage(target, row, col); ok {
				r.renderKey(tp, tk, row, col)
			}
		}
		return
	}
	r.composeAndSubmit(key, row, col, vis.OverlayLevel)
}

func (r *Reconciler) composeAndSubmit(key *entities.Key, row, col, overlayDepth int) {
	deck := r.tree.root.deck
	layers := activeEntities(key.Layers)
	lines := activeTextLines(key.Lines)

	offsets := make(map[entities.LineID]float64, len(lines))
	for _, l := range lines {
		offsets[l.ID] = r.scrollOffsets[l.Path()]
	}

	frame, err := r.comp.Compose(render.KeyInput{
		Width:         deck.KeyWidth,
		Height:        deck.KeyHeight,
		Layers:        layers,
		Lines:         lines,
		OverlayDepth:  overlayDepth,
		ScrollOffsets: offsets,
	})
	if err != nil {
		r.log.Warn("compose failed", "key", key.Path(), "error", err.Error())
		return
	}

	_, cols, _, _, nativeFormat := r.drv.Geometry()
	index := (row-1)*cols + (col - 1)
	r.writer.Submit(render.WriteRequest{KeyIndex: index, Frame: frame, Format: nativeFormat})
}

func activeEntities(m map[entities.LayerID]*entities.VersionSlot) []*entities.Layer {
	out := make([]*entities.Layer, 0, len(m))
	for _, slot := range m {
		if a, ok := slot.Active().(*entities.Layer); ok {
			out = append(out, a)
		}
	}
	return out
}

func activeTextLines(m map[entities.LineID]*entities.VersionSlot) []*entities.TextLine {
	out := make([]*entities.TextLine, 0, len(m))
	for _, slot := range m {
		if a, ok := slot.Active().(*entities.TextLine); ok {
			out = append(out, a)
		}
	}
	return out
}

// hasContent satisfies pagestate.Machine's content predicate.
func (r *Reconciler) hasContent(page, row, col int) bool {
	slot, ok := r.tree.root.deck.Pages[entities.PageID(page)]
	if !ok {
		return false
	}
	p, ok := slot.Active().(*entities.Page)
	if !ok {
		return false
	}
	kslot, ok := p.Keys[entities.KeyID{Row: row, Col: col}]
	if !ok {
		return false
	}
	k, ok := kslot.Active().(*entities.Key)
	return ok && k.HasContent()
}

// keyAtPage resolves the active Page/Key pair at (pageNum,row,col), used to
// re-render a bleed-through target.
func (r *Reconciler) keyAtPage(pageNum, row, col int) (*entities.Page, *entities.Key, bool) {
	slot, ok := r.tree.root.deck.Pages[entities.PageID(pageNum)]
	if !ok {
		return nil, nil, false
	}
	p, ok := slot.Active().(*entities.Page)
	if !ok {
		return nil, nil, false
	}
	kslot, ok := p.Keys[entities.KeyID{Row: row, Col: col}]
	if !ok {
		return nil, nil, false
	}
	k, ok := kslot.Active().(*entities.Key)
	if !ok {
		return nil, nil, false
	}
	return p, k, true
}

// armScroller starts (or restarts) the Scroller for one text line. Ticks
// are funneled back through scrollTicks so the offset update and the
// re-render it triggers both happen on the reconciler's own goroutine.
func (r *Reconciler) armScroller(key *entities.Key, line *entities.TextLine) {
	if old, ok := r.scrollers[line.Path()]; ok {
		old.Stop()
	}
	deck := r.tree.root.deck
	slotW := deck.KeyWidth
	sourceW := slotW * 2 // fixed estimate of the text's width; the Scroller wraps against it for the line's whole activation and never replaces it with the rendered extent
	row, col := key.ID.Row, key.ID.Col
	linePath := line.Path()

	s := render.NewScroller(r.sched, 33*time.Millisecond, line.Args.Scroll, slotW, sourceW, func(offset float64) {
		select {
		case r.scrollTicks <- scrollTick{linePath: linePath, key: key, row: row, col: col, offset: offset}:
		default:
		}
	})
	r.scrollers[linePath] = s
	s.Start()
}

// disarmScroller stops and forgets a text line's scroller, per deletion.
func (r *Reconciler) disarmScroller(linePath string) {
	if s, ok := r.scrollers[linePath]; ok {
		s.Stop()
		delete(r.scrollers, linePath)
	}
	delete(r.scrollOffsets, linePath)
}

// sdfsContext builds the SDFS_* substitution/environment context for an
// event firing at node n (§6). released events carry no key geometry.
func (r *Reconciler) sdfsContext(n *node, ev *entities.Event) entities.SDFSContext {
	ctx := entities.SDFSContext{Serial: r.tree.root.deck.Serial}
	switch n.kind {
	case entities.KindKey:
		ctx.KeyRow, ctx.KeyCol = n.key.ID.Row, n.key.ID.Col
		ctx.KeyName = n.key.Name()
		if n.page != nil {
			ctx.PageNumber = int(n.page.ID)
			ctx.PageName = n.page.Name()
			ctx.PageDirectory = n.page.Path()
		}
	case entities.KindPage:
		ctx.PageNumber = int(n.page.ID)
		ctx.PageName = n.page.Name()
		ctx.PageDirectory = n.page.Path()
	}
	if ev != nil {
		ctx.EventName = string(ev.EventKind)
		ctx.EventFile = ev.Path()
	}
	return ctx
}
