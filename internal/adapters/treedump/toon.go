// Package treedump renders the live entity tree in TOON (Token-Optimized
// Object Notation), the teacher's own hand-rolled compact encoding, for
// `--verbose`/`-v` debug-level troubleshooting dumps. The generic
// reflection-based encoder is kept close to the teacher's original; only the
// abbreviation table and the top-level dump shape are specific to the
// streamdeck domain.
package treedump

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// Format rules (unchanged from the teacher's encoder):
//   - Objects: {k1:v1;k2:v2} (semicolon-delimited)
//   - Arrays: [v1;v2;v3] (semicolon-delimited)
//   - Strings: unquoted if simple alphanumeric, quoted otherwise
//   - Booleans: T/F
//   - Null/empty: -

// keyAbbreviations shortens the fields that recur most often across a
// streamdeck entity tree dump.
var keyAbbreviations = map[string]string{
	"serial":     "ser",
	"rows":       "r",
	"cols":       "c",
	"brightness": "br",
	"disabled":   "dis",
	"name":       "n",
	"overlay":    "ov",
	"layer":      "ly",
	"line":       "ln",
	"kind":       "k",
	"path":       "p",
	"attrs":      "a",
	"active":     "act",
	"versions":   "vers",
}

// DeckSnapshot is the shape handed to Dump: a plain, already-flattened view
// of one deck's tree, built by the reconciler on demand (it never walks the
// live *entities.Deck directly, so a dump never races a mutation).
type DeckSnapshot struct {
	Serial     string
	Rows, Cols int
	Brightness int
	Pages      []PageSnapshot
}

type PageSnapshot struct {
	Number  int
	Name    string
	Overlay bool
	Keys    []KeySnapshot
}

type KeySnapshot struct {
	Row, Col int
	Layers   int
	Lines    int
	Events   []string
}

// Dump renders a DeckSnapshot as a single TOON line.
func Dump(d DeckSnapshot) string {
	return encodeTOONValue(reflect.ValueOf(d), 0)
}

// DumpEntity renders any single entity's Common fields plus its kind —
// used for one-line "activated"/"deactivated" debug log entries.
func DumpEntity(e entities.Entity) string {
	fields := map[string]any{
		"kind":     e.Kind().String(),
		"path":     e.Path(),
		"disabled": e.Disabled(),
	}
	return encodeTOONValue(reflect.ValueOf(fields), 0)
}

func encodeTOONValue(v reflect.Value, depth int) string {
	if !v.IsValid() {
		return "-"
	}
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "-"
		}
		return encodeTOONValue(v.Elem(), depth)
	}

	switch v.Kind() {
	case reflect.String:
		s := v.String()
		if s == "" {
			return "-"
		}
		if isSimpleString(s) {
			return s
		}
		return fmt.Sprintf("%q", s)

	case reflect.Bool:
		if v.Bool() {
			return "T"
		}
		return "F"

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())

	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", v.Float())

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, encodeTOONValue(v.Index(i), depth+1))
		}
		return "[" + strings.Join(parts, ";") + "]"

	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, abbreviateKey(k)+":"+encodeTOONValue(byKey[k], depth+1))
		}
		return "{" + strings.Join(parts, ";") + "}"

	case reflect.Struct:
		t := v.Type()
		var parts []string
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fieldVal := encodeTOONValue(v.Field(i), depth+1)
			if fieldVal == "-" || fieldVal == "[]" || fieldVal == "{}" {
				continue
			}
			parts = append(parts, abbreviateKey(field.Name)+":"+fieldVal)
		}
		if len(parts) == 0 {
			return "{}"
		}
		return "{" + strings.Join(parts, ";") + "}"

	default:
		return "-"
	}
}

func isSimpleString(s string) bool {
	if len(s) == 0 || len(s) > 80 {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' || r == ',' || r == '/') {
			return false
		}
	}
	return true
}

func abbreviateKey(key string) string {
	lower := strings.ToLower(key)
	if abbr, ok := keyAbbreviations[lower]; ok {
		return abbr
	}
	return lower
}
