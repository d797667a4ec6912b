package grammar

import (
	"regexp"
	"strconv"
	"strings"
)

// varToken matches a `$VAR_NAME` or `$SDFS_NAME` reference inside an
// argument value, with an optional `[<index>]` suffix (§3: "index is an
// integer line number or `#`"). Both name shapes follow
// `[A-Z][A-Z0-9_]*[A-Z0-9]` — the same shape as a `VAR_<NAME>` entity
// identifier, which rules out a trailing underscore or a single-letter name.
var varToken = regexp.MustCompile(`\$(VAR_[A-Z][A-Z0-9_]*[A-Z0-9]|SDFS_[A-Z][A-Z0-9_]*[A-Z0-9])(?:\[([^\]]+)\])?`)

// substituteVars replaces every `$VAR_*`/`$SDFS_*` token in s using lookup.
// When every token resolves, ok is true and out is the substituted string.
// Otherwise ok is false and missing lists the distinct undefined variable
// names, in first-seen order, so the caller can park the filename on all of
// them.
func substituteVars(s string, lookup VarLookup) (out string, missing []string, ok bool) {
	seenMissing := make(map[string]bool)
	var missingNames []string
	failed := false

	result := varToken.ReplaceAllStringFunc(s, func(match string) string {
		sub := varToken.FindStringSubmatch(match)
		name, index := sub[1], sub[2]
		value, found := lookup(name)
		if !found {
			failed = true
			if !seenMissing[name] {
				seenMissing[name] = true
				missingNames = append(missingNames, name)
			}
			return match
		}
		if index == "" {
			return value
		}
		return resolveIndex(value, index)
	})

	if failed {
		return "", missingNames, false
	}
	return result, nil, true
}

// resolveIndex implements §3's "$VAR_NAME[<index>]" selection: index is
// either a 1-based integer line number or `#` for the line count. An
// out-of-range line number resolves to the empty string rather than
// failing the whole substitution.
func resolveIndex(value, index string) string {
	lines := strings.Split(value, "\n")
	if index == "#" {
		return strconv.Itoa(len(lines))
	}
	n, err := strconv.Atoi(index)
	if err != nil || n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}
