package reconcile

import (
	"sort"

	"github.com/twidi/streamdeckfs-go/internal/adapters/treedump"
	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// snapshot flattens the live tree into a treedump.DeckSnapshot for
// `--verbose`/`-v` debug dumps (SPEC_FULL.md §A). It never hands the live
// *entities.Deck itself to the encoder, so a dump can't race a concurrent
// mutation on the reconciler's own goroutine.
func (r *Reconciler) snapshot() treedump.DeckSnapshot {
	deck := r.tree.root.deck
	snap := treedump.DeckSnapshot{
		Serial:     deck.Serial,
		Rows:       deck.Rows,
		Cols:       deck.Cols,
		Brightness: deck.Brightness,
	}

	pageIDs := make([]entities.PageID, 0, len(deck.Pages))
	for id := range deck.Pages {
		pageIDs = append(pageIDs, id)
	}
	sort.Slice(pageIDs, func(i, j int) bool { return pageIDs[i] < pageIDs[j] })

	for _, id := range pageIDs {
		p, ok := deck.Pages[id].Active().(*entities.Page)
		if !ok {
			continue
		}
		snap.Pages = append(snap.Pages, pageSnapshot(p))
	}
	return snap
}

func pageSnapshot(p *entities.Page) treedump.PageSnapshot {
	ps := treedump.PageSnapshot{Number: int(p.ID), Name: p.Name(), Overlay: p.Overlay}

	keyIDs := make([]entities.KeyID, 0, len(p.Keys))
	for id := range p.Keys {
		keyIDs = append(keyIDs, id)
	}
	sort.Slice(keyIDs, func(i, j int) bool {
		if keyIDs[i].Row != keyIDs[j].Row {
			return keyIDs[i].Row < keyIDs[j].Row
		}
		return keyIDs[i].Col < keyIDs[j].Col
	})

	for _, id := range keyIDs {
		k, ok := p.Keys[id].Active().(*entities.Key)
		if !ok {
			continue
		}
		ps.Keys = append(ps.Keys, keySnapshot(k))
	}
	return ps
}

func keySnapshot(k *entities.Key) treedump.KeySnapshot {
	ks := treedump.KeySnapshot{Row: k.ID.Row, Col: k.ID.Col}
	for _, s := range k.Layers {
		if s.Active() != nil {
			ks.Layers++
		}
	}
	for _, s := range k.Lines {
		if s.Active() != nil {
			ks.Lines++
		}
	}
	var kinds []string
	for kind, s := range k.Events {
		if s.Active() != nil {
			kinds = append(kinds, string(kind))
		}
	}
	sort.Strings(kinds)
	ks.Events = kinds
	return ks
}
