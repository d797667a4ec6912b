package grammar

import "github.com/twidi/streamdeckfs-go/internal/core/entities"

// Parse runs the full §4.1 pipeline over one basename: split main/args,
// decode escapes, substitute variables and expressions, fold dotted
// sub-keys, and resolve `ref=`. lookup and resolveRef may be nil, in which
// case `$VAR_*`/`ref=` are treated as always-unresolved (useful for a
// first, ref-and-var-free pass over a directory).
func Parse(basename string, lookup VarLookup, resolveRef RefResolver) Result {
	main, rawArgs := splitBasename(basename)

	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	values, missing, err := parseArgValues(rawArgs, lookup)
	if err != nil {
		return Result{Outcome: Reject, Main: main, Err: err}
	}
	if len(missing) > 0 {
		return Result{Outcome: WaitVars, Main: main, Missing: missing}
	}

	folded := foldSubKeys(values)
	attrs := entities.Attrs(folded)

	if ref, ok := attrs["ref"]; ok && ref != "" {
		if resolveRef == nil {
			return Result{Outcome: WaitRef, Main: main, RefSelector: ref}
		}
		targetBag, ok := resolveRef(ref)
		if !ok {
			return Result{Outcome: WaitRef, Main: main, RefSelector: ref}
		}
		attrs = attrs.Merge(targetBag)
	}

	return Result{Outcome: Parsed, Main: main, Attrs: attrs}
}
