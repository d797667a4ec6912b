package entities

import "fmt"

// PageID identifies a page within a deck: the integer `n` of `PAGE_<n>`.
type PageID int

// KeyID identifies a key within a page: the (row, col) of `KEY_ROW_<r>_COL_<c>`.
// Both are 1-indexed, matching the grammar's on-disk numbering.
type KeyID struct {
	Row int
	Col int
}

func (k KeyID) String() string { return fmt.Sprintf("%d,%d", k.Row, k.Col) }

// LayerID identifies an image layer within a key. -1 means "the only image
// when there are no numbered layers" per §3.
type LayerID int

// LineID identifies a text line within a key, with the same -1 convention
// as LayerID.
type LineID int

// EventKind enumerates the recognized ON_<KIND> event kinds.
type EventKind string

const (
	EventPress     EventKind = "press"
	EventLongPress EventKind = "longpress"
	EventRelease   EventKind = "release"
	EventStart     EventKind = "start"
	EventEnd       EventKind = "end"
)

// AllowedAt reports whether this event kind may be attached at the given
// scope. Deck- and page-scope events are restricted to start/end (§3).
func (e EventKind) AllowedAt(kind Kind) bool {
	switch kind {
	case KindDeck, KindPage:
		return e == EventStart || e == EventEnd
	case KindKey:
		return e == EventPress || e == EventLongPress || e == EventRelease || e == EventStart || e == EventEnd
	default:
		return false
	}
}

// VarName identifies a variable: the `NAME` of `VAR_<NAME>`, matching
// `[A-Z][A-Z0-9_]*[A-Z0-9]`.
type VarName string
