// Package grammar turns a basename on disk into an attribute bag, and back.
// A basename is `<main>[;<arg>[;<arg>…]]`; each <arg> is `<key>=<value>` or a
// bare flag. Parsing also substitutes `$VAR_*`/`$SDFS_*` references (with an
// optional `[<index>]` line selector) and `{expression}` arithmetic, folds
// dotted sub-keys into their parent composite value, and resolves `ref=` by
// merging the target's bag beneath the referrer's.
package grammar

import "github.com/twidi/streamdeckfs-go/internal/core/entities"

// Outcome classifies the result of parsing a basename, replacing the
// raise-and-catch control flow of the original implementation with an
// explicit sum type (§9).
type Outcome int

const (
	// Parsed means attrs is a complete, substituted, type-ready bag.
	Parsed Outcome = iota
	// WaitVars means one or more `$VAR_*`/`$SDFS_*` tokens are undefined;
	// Missing names the variables the caller should park this filename on.
	WaitVars
	// WaitRef means `ref=` points at a selector that does not resolve yet;
	// RefSelector names the target to park this filename on.
	WaitRef
	// Reject means the basename is permanently invalid; Err explains why.
	Reject
)

// Result is the outcome of parsing one basename.
type Result struct {
	Outcome Outcome

	// Main is the identifying token before the first `;` (e.g. "PAGE_3",
	// "KEY_ROW_2_COL_5", "ON_PRESS", "IMAGE", "VAR_MODE").
	Main string

	// Attrs is the fully resolved attribute bag, valid only when
	// Outcome == Parsed.
	Attrs entities.Attrs

	// Missing lists the undefined variable names, valid only when
	// Outcome == WaitVars.
	Missing []string

	// RefSelector is the unresolved `ref=` target, valid only when
	// Outcome == WaitRef.
	RefSelector string

	// Err explains a Reject outcome.
	Err error
}

// VarLookup resolves a `$VAR_NAME` or `$SDFS_NAME` token (name only, without
// any `[index]` suffix) to its current value. ok is false when the variable
// is not (yet) defined in the entity's cascade scope, or the SDFS name is
// not one §6 enumerates.
type VarLookup func(name string) (value string, ok bool)

// RefResolver resolves a `ref=` selector to the target's own attribute bag.
// ok is false when the selector does not currently match any entity.
type RefResolver func(selector string) (bag entities.Attrs, ok bool)
