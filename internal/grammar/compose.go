package grammar

import (
	"sort"
	"strings"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// canonicalOrder fixes the argument order per entity kind so that
// compose(parse(name)) == name for any name already in canonical form, and
// repeated renames converge instead of drifting (§8, parse idempotence).
// Keys not listed here (custom/unknown arguments) sort alphabetically after
// the listed ones.
var canonicalOrder = map[entities.Kind][]string{
	entities.KindPage: {"name", "overlay", "ref", "disabled"},
	entities.KindKey:  {"name", "ref", "disabled"},
	entities.KindLayer: {
		"layer", "name", "ref", "file", "draw", "coords", "outline", "fill",
		"width", "radius", "angles", "colorize", "margin", "crop", "rotate",
		"opacity", "disabled",
	},
	entities.KindTextLine: {
		"line", "name", "ref", "file", "text", "size", "weight", "italic",
		"align", "valign", "color", "opacity", "wrap", "margin", "scroll",
		"disabled",
	},
	entities.KindEvent: {
		"name", "ref", "file", "wait", "every", "max-runs", "command",
		"detach", "unique", "duration-min", "duration-max", "brightness",
		"page", "overlay", "disabled",
	},
	entities.KindVar: {"name", "value", "file", "disabled"},
}

// Compose renders main and attrs back into a basename, ordering arguments
// per kind's canonicalOrder, emitting every key present in attrs (a key
// with an empty value as a bare flag; `slash`/`semicolon` are never
// emitted), and re-applying the escape substitution for any value
// containing a literal `/` or `;`.
func Compose(kind entities.Kind, main string, attrs entities.Attrs) string {
	order := canonicalOrder[kind]
	seen := make(map[string]bool, len(order))
	tokens := defaultEscapeTokens()

	var b strings.Builder
	b.WriteString(main)

	emit := func(key, value string) {
		seen[key] = true
		if key == "slash" || key == "semicolon" {
			return
		}
		b.WriteByte(';')
		if value == "" {
			b.WriteString(key)
			return
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(encodeValue(value, tokens))
	}

	for _, key := range order {
		if value, ok := attrs[key]; ok {
			emit(key, value)
		}
	}

	var rest []string
	for key := range attrs {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		emit(key, attrs[key])
	}

	return b.String()
}
