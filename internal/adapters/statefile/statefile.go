// Package statefile reads and writes the two small per-deck JSON state
// files named in spec.md §4.10: `.current_page`, written by the daemon
// after every successful page transition, and `.set_current_page`, read
// and deleted to accept an externally requested jump. Both names are
// ignored by the ordinary child-scanning rules — they never create an
// entity (§4.10, §3).
package statefile

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CurrentPageName and SetCurrentPageName are the two reserved basenames the
// directory watcher and reconciler must never treat as entity candidates.
const (
	CurrentPageName    = ".current_page"
	SetCurrentPageName = ".set_current_page"
)

// IsReserved reports whether name is one of the two state files, for the
// watcher/reconciler's "ignored by ordinary child-scanning rules" check.
func IsReserved(name string) bool {
	return name == CurrentPageName || name == SetCurrentPageName
}

// CurrentPage is the `.current_page` JSON shape (§4.10).
type CurrentPage struct {
	Number    *int    `json:"number"`
	Name      *string `json:"name"`
	IsOverlay *bool   `json:"is_overlay"`
}

// WriteCurrentPage overwrites `.current_page` inside deckDir after a
// successful transition.
func WriteCurrentPage(deckDir string, cp CurrentPage) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(deckDir, CurrentPageName), data, 0o644)
}

// SetCurrentPageRequest is the `.set_current_page` JSON shape (§4.10):
// accepts an identifier, a name, or one of the four navigation codes.
type SetCurrentPageRequest struct {
	Page      string `json:"page"`
	IsOverlay bool   `json:"is_overlay"`
}

// ReadAndClearSetCurrentPage reads and deletes `.set_current_page` inside
// deckDir, if present. A malformed file is silently discarded per §4.10
// ("A malformed file is silently discarded"); ok is false whenever there is
// nothing valid to act on, whether because the file is absent or malformed.
func ReadAndClearSetCurrentPage(deckDir string) (req SetCurrentPageRequest, ok bool) {
	path := filepath.Join(deckDir, SetCurrentPageName)
	data, err := os.ReadFile(path)
	if err != nil {
		return SetCurrentPageRequest{}, false
	}
	defer os.Remove(path)

	if err := json.Unmarshal(data, &req); err != nil {
		return SetCurrentPageRequest{}, false
	}
	if req.Page == "" {
		return SetCurrentPageRequest{}, false
	}
	return req, true
}
