// Package entities contains the domain model for the streamdeckfs daemon:
// the Deck/Page/Key/Layer/TextLine/Event/Var entity kinds, their shared
// attribute bag, versioning, and reference graph. These are pure Go structs
// with validation logic; the only external dependency is
// go-viper/mapstructure, which decode.go uses to decode attribute bags.
package entities

import "time"

// Kind identifies one of the seven entity variants that can live in the tree.
type Kind int

const (
	KindDeck Kind = iota
	KindPage
	KindKey
	KindLayer
	KindTextLine
	KindEvent
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindDeck:
		return "deck"
	case KindPage:
		return "page"
	case KindKey:
		return "key"
	case KindLayer:
		return "layer"
	case KindTextLine:
		return "textline"
	case KindEvent:
		return "event"
	case KindVar:
		return "var"
	default:
		return "unknown"
	}
}

// Entity is implemented by every versioned candidate that can occupy a slot
// in the tree: one concrete file or directory on disk, parsed into an
// attribute bag. Multiple Entities may share the same identifier within a
// parent; VersionSlot decides which one is active (see version.go).
type Entity interface {
	Kind() Kind
	Path() string
	CTime() time.Time
	Disabled() bool
}

// Common holds the fields every entity kind shares, regardless of variant.
type Common struct {
	// EntityPath is the absolute filesystem path of the file or directory
	// that produced this candidate.
	EntityPath string

	// ChangeTime is the inode ctime used to pick the active version.
	ChangeTime time.Time

	// IsDisabled mirrors the `disabled` flag parsed from the basename.
	IsDisabled bool

	// DisplayName mirrors the `name=` flag; not unique, used to shadow
	// numeric identifiers when an entity is looked up by filter.
	DisplayName string

	// Attrs holds every parsed argument, already variable- and
	// expression-substituted, keyed by argument name (dotted sub-keys
	// already folded by the grammar's merge step).
	Attrs Attrs

	// RefTarget is the resolved `ref=` selector, if any, kept around so
	// cache invalidation can find it again when the target changes.
	RefTarget string
}

func (c Common) Path() string      { return c.EntityPath }
func (c Common) CTime() time.Time  { return c.ChangeTime }
func (c Common) Disabled() bool    { return c.IsDisabled }
func (c Common) Name() string      { return c.DisplayName }
