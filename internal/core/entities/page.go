package entities

import "time"

// PageArgs holds the page-specific arguments parsed from `PAGE_<n>[;...]`.
type PageArgs struct {
	Disabled bool   `arg:"disabled"`
	Name     string `arg:"name"`
	Overlay  bool   `arg:"overlay"`
	Ref      string `arg:"ref"`
}

// Page is a directory matching `PAGE_<n>[;...]`.
type Page struct {
	Common
	ID      PageID
	Overlay bool
	Parent  *Deck

	// Keys, Events, and Vars are the page's direct children.
	Keys   map[KeyID]*VersionSlot
	Events map[EventKind]*VersionSlot
	Vars   map[VarName]*VersionSlot
}

func (p *Page) Kind() Kind { return KindPage }

// NewPage builds a Page candidate from a parsed identifier and attribute bag.
func NewPage(path string, ctime time.Time, id PageID, attrs Attrs) (*Page, error) {
	var args PageArgs
	if err := decodeAttrs(attrs, &args); err != nil {
		return nil, NewValidationError("Page", "args", "", "could not decode arguments", err)
	}
	return &Page{
		Common: Common{
			EntityPath:  path,
			ChangeTime:  ctime,
			IsDisabled:  args.Disabled,
			DisplayName: args.Name,
			Attrs:       attrs,
			RefTarget:   args.Ref,
		},
		ID:      id,
		Overlay: args.Overlay,
		Keys:    make(map[KeyID]*VersionSlot),
		Events:  make(map[EventKind]*VersionSlot),
		Vars:    make(map[VarName]*VersionSlot),
	}, nil
}
