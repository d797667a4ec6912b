package grammar

import (
	"errors"
	"strings"
)

var errNotIndex = errors.New("not a numeric index")

// compositeFields names the positional components of each composite
// argument, in the order they're joined by commas when composed back into a
// basename. A dotted sub-key (`margin.top=...`) addresses one component by
// name; `coords` has no named components and is addressed purely by index
// (`coords.0=...`).
var compositeFields = map[string][]string{
	"margin": {"top", "right", "bottom", "left"},
	"crop":   {"left", "top", "right", "bottom"},
	"angles": {"start", "end"},
}

// foldSubKeys folds dotted sub-keys (`margin.top=5`) into their parent
// composite value (`margin=5,,,`; components with no value stay empty), per
// §4.1 step 5. Keys with no dot, and
// dotted keys whose base isn't a known composite, pass through unchanged —
// a dotted key the caller doesn't recognize is left as a literal key so a
// later validation stage can reject it explicitly instead of merge()
// silently dropping it.
func foldSubKeys(args map[string]string) map[string]string {
	bases := make(map[string][]string) // base -> component values, lazily sized
	present := make(map[string]bool)
	out := make(map[string]string, len(args))

	componentsOf := func(base string) []string {
		if v, ok := bases[base]; ok {
			return v
		}
		n := len(compositeFields[base])
		if n == 0 {
			// Unbounded composite (e.g. coords): size to fit both the
			// plain value's own component count and the highest dotted
			// index referenced, whichever is larger.
			if plain, ok := args[base]; ok {
				if c := len(strings.Split(plain, ",")); c > n {
					n = c
				}
			}
			if c := maxCoordsIndex(args, base) + 1; c > n {
				n = c
			}
		}
		v := make([]string, n)
		if len(compositeFields[base]) == 0 {
			if plain, ok := args[base]; ok {
				copy(v, strings.Split(plain, ","))
			}
		}
		bases[base] = v
		return v
	}

	// Seed bases from the plain (non-dotted) composite value, if present.
	for key, value := range args {
		if strings.Contains(key, ".") {
			continue
		}
		if _, isComposite := compositeFields[key]; isComposite {
			present[key] = true
			parts := strings.Split(value, ",")
			comp := componentsOf(key)
			for i := 0; i < len(comp) && i < len(parts); i++ {
				comp[i] = parts[i]
			}
		}
	}

	// Apply dotted overrides.
	for key, value := range args {
		idx := strings.IndexByte(key, '.')
		if idx < 0 {
			continue
		}
		base, sub := key[:idx], key[idx+1:]
		comp := componentsOf(base)
		pos := fieldIndex(base, sub)
		if pos < 0 || pos >= len(comp) {
			out[key] = value // unrecognized sub-key: pass through literally
			continue
		}
		present[base] = true
		comp[pos] = value
	}

	// Emit plain (undotted) keys untouched.
	for key, value := range args {
		if strings.Contains(key, ".") {
			continue
		}
		if _, isComposite := compositeFields[key]; !isComposite {
			out[key] = value
		}
	}

	// Emit the folded composite values.
	for base := range present {
		out[base] = strings.Join(bases[base], ",")
	}

	return out
}

func fieldIndex(base, sub string) int {
	for i, name := range compositeFields[base] {
		if name == sub {
			return i
		}
	}
	var n int
	if _, err := scanIndex(sub, &n); err == nil {
		return n
	}
	return -1
}

// maxCoordsIndex finds the highest numeric sub-key index used for base
// across args, used to size an unbounded composite like `coords`.
func maxCoordsIndex(args map[string]string, base string) int {
	max := -1
	prefix := base + "."
	for key := range args {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		var n int
		if _, err := scanIndex(key[len(prefix):], &n); err == nil && n > max {
			max = n
		}
	}
	return max
}

func scanIndex(s string, out *int) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotIndex
		}
		n = n*10 + int(r-'0')
	}
	if s == "" {
		return 0, errNotIndex
	}
	*out = n
	return n, nil
}
