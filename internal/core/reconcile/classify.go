package reconcile

import (
	"regexp"
	"strconv"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

var (
	pagePattern = regexp.MustCompile(`^PAGE_(\d+)$`)
	keyPattern  = regexp.MustCompile(`^KEY_ROW_(\d+)_COL_(\d+)$`)
	eventKinds  = map[string]entities.EventKind{
		"PRESS":     entities.EventPress,
		"LONGPRESS": entities.EventLongPress,
		"RELEASE":   entities.EventRelease,
		"START":     entities.EventStart,
		"END":       entities.EventEnd,
	}
)

// childKind classifies a basename's main token (before grammar.Parse even
// runs, since the kind of entity decides which constructor and which scope
// of variable lookup apply) into one of the seven kinds, or ok=false for a
// basename that is not a recognized entity at all.
func childKind(main string, parentKind entities.Kind) (kind entities.Kind, pageID entities.PageID, keyID entities.KeyID, eventKind entities.EventKind, varName entities.VarName, ok bool) {
	if m := pagePattern.FindStringSubmatch(main); m != nil && parentKind == entities.KindDeck {
		n, _ := strconv.Atoi(m[1])
		return entities.KindPage, entities.PageID(n), entities.KeyID{}, "", "", true
	}
	if m := keyPattern.FindStringSubmatch(main); m != nil && parentKind == entities.KindPage {
		row, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return entities.KindKey, 0, entities.KeyID{Row: row, Col: col}, "", "", true
	}
	if len(main) > 3 && main[:3] == "ON_" && (parentKind == entities.KindDeck || parentKind == entities.KindPage || parentKind == entities.KindKey) {
		if ek, ok2 := eventKinds[main[3:]]; ok2 && ek.AllowedAt(parentKind) {
			return entities.KindEvent, 0, entities.KeyID{}, ek, "", true
		}
	}
	if len(main) > 4 && main[:4] == "VAR_" && (parentKind == entities.KindDeck || parentKind == entities.KindPage || parentKind == entities.KindKey) {
		return entities.KindVar, 0, entities.KeyID{}, "", entities.VarName(main[4:]), true
	}
	if main == "IMAGE" && parentKind == entities.KindKey {
		return entities.KindLayer, 0, entities.KeyID{}, "", "", true
	}
	if main == "TEXT" && parentKind == entities.KindKey {
		return entities.KindTextLine, 0, entities.KeyID{}, "", "", true
	}
	return 0, 0, entities.KeyID{}, "", "", false
}
