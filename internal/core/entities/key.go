package entities

import "time"

// KeyArgs holds the key-specific arguments parsed from
// `KEY_ROW_<r>_COL_<c>[;...]`.
type KeyArgs struct {
	Disabled bool   `arg:"disabled"`
	Name     string `arg:"name"`
	Ref      string `arg:"ref"`
}

// Key is a directory matching `KEY_ROW_<r>_COL_<c>[;...]`.
type Key struct {
	Common
	ID     KeyID
	Parent *Page

	// Layers, Lines, Events, and Vars are the key's direct children.
	Layers map[LayerID]*VersionSlot
	Lines  map[LineID]*VersionSlot
	Events map[EventKind]*VersionSlot
	Vars   map[VarName]*VersionSlot
}

func (k *Key) Kind() Kind { return KindKey }

// NewKey builds a Key candidate. Grid-bounds validation (1<=row<=rows,
// 1<=col<=cols) happens in the reconciler, which knows the deck's geometry.
func NewKey(path string, ctime time.Time, id KeyID, attrs Attrs) (*Key, error) {
	var args KeyArgs
	if err := decodeAttrs(attrs, &args); err != nil {
		return nil, NewValidationError("Key", "args", "", "could not decode arguments", err)
	}
	return &Key{
		Common: Common{
			EntityPath:  path,
			ChangeTime:  ctime,
			IsDisabled:  args.Disabled,
			DisplayName: args.Name,
			Attrs:       attrs,
			RefTarget:   args.Ref,
		},
		ID:     id,
		Layers: make(map[LayerID]*VersionSlot),
		Lines:  make(map[LineID]*VersionSlot),
		Events: make(map[EventKind]*VersionSlot),
		Vars:   make(map[VarName]*VersionSlot),
	}, nil
}

// HasContent reports whether the key has any active layer, text line, or
// event — a key without content may be drawn through from a page below (§3).
func (k *Key) HasContent() bool {
	for _, s := range k.Layers {
		if s.Active() != nil {
			return true
		}
	}
	for _, s := range k.Lines {
		if s.Active() != nil {
			return true
		}
	}
	for _, s := range k.Events {
		if s.Active() != nil {
			return true
		}
	}
	return false
}

// InGrid reports whether the key's identifier fits the deck's grid.
func (id KeyID) InGrid(rows, cols int) bool {
	return id.Row >= 1 && id.Row <= rows && id.Col >= 1 && id.Col <= cols
}
