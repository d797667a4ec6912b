package grammar

import "strings"

// splitBasename splits a raw basename into its main token and raw argument
// tokens, on literal `;`. Escaped semicolons inside a value are encoded via
// the per-argument `semicolon=` token (see escape.go) and are not split on
// here: the caller only sees a literal `;` once escape decoding runs per
// value, which happens after this split, so a value containing the
// configured semicolon substitute character passes through untouched.
func splitBasename(basename string) (main string, rawArgs []string) {
	parts := strings.Split(basename, ";")
	main = parts[0]
	if len(parts) > 1 {
		rawArgs = parts[1:]
	}
	return main, rawArgs
}

// splitRawArg splits one `key=value` or bare-flag token into a key and an
// optional value. ok is false for an empty token (e.g. a stray `;;`).
func splitRawArg(token string) (key, value string, hasValue, ok bool) {
	if token == "" {
		return "", "", false, false
	}
	if idx := strings.IndexByte(token, '='); idx >= 0 {
		return token[:idx], token[idx+1:], true, true
	}
	return token, "", false, true
}
