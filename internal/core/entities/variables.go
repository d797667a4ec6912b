package entities

import (
	"fmt"
	"os"
)

// LookupVar resolves `$VAR_X` used in a filename under the key, cascading
// to the page and then the deck, per §3: "first look up the variable on
// the entity's parent, then grandparent, then deck."
func (k *Key) LookupVar(name VarName) (*Var, bool) {
	if slot, ok := k.Vars[name]; ok {
		if v, ok := slot.Active().(*Var); ok {
			return v, true
		}
	}
	if k.Parent != nil {
		return k.Parent.LookupVar(name)
	}
	return nil, false
}

// LookupVar resolves a variable used under the page, cascading to the deck.
func (p *Page) LookupVar(name VarName) (*Var, bool) {
	if slot, ok := p.Vars[name]; ok {
		if v, ok := slot.Active().(*Var); ok {
			return v, true
		}
	}
	if p.Parent != nil {
		return p.Parent.LookupVar(name)
	}
	return nil, false
}

// LookupVar resolves a variable used under the deck — the end of the cascade.
func (d *Deck) LookupVar(name VarName) (*Var, bool) {
	if slot, ok := d.Vars[name]; ok {
		if v, ok := slot.Active().(*Var); ok {
			return v, true
		}
	}
	return nil, false
}

// SDFSContext carries the ambient values used to resolve the read-only
// `SDFS_*` substitution variables (§3) and, doubling as the same data, the
// environment variables exported to subprocesses (§6, §4.9 step 4).
type SDFSContext struct {
	Serial          string
	PageNumber      int
	PageName        string
	PageDirectory   string
	KeyRow, KeyCol  int
	KeyName         string
	EventName       string
	EventFile       string
	PressedAtUnixMS int64
	PressDurationMS int64
}

// LookupSDFS resolves an `SDFS_*` name against the context. It returns
// false for names not in the fixed set §6 enumerates.
func (c SDFSContext) LookupSDFS(name string) (string, bool) {
	switch name {
	case "SDFS_SERIAL":
		return c.Serial, true
	case "SDFS_PAGE":
		return fmt.Sprintf("%d", c.PageNumber), true
	case "SDFS_PAGE_NAME":
		return c.PageName, true
	case "SDFS_PAGE_DIRECTORY":
		return c.PageDirectory, true
	case "SDFS_KEY_ROW":
		return fmt.Sprintf("%d", c.KeyRow), true
	case "SDFS_KEY_COL":
		return fmt.Sprintf("%d", c.KeyCol), true
	case "SDFS_KEY_NAME":
		return c.KeyName, true
	case "SDFS_EVENT":
		return c.EventName, true
	case "SDFS_EVENT_FILE":
		return c.EventFile, true
	case "SDFS_PRESSED_AT":
		return fmt.Sprintf("%d", c.PressedAtUnixMS), true
	case "SDFS_PRESS_DURATION":
		return fmt.Sprintf("%d", c.PressDurationMS), true
	default:
		return "", false
	}
}

// Environ returns the daemon's own environment (os.Environ()) followed by
// the context's `SDFS_*=value` pairs, ready to use as an exec.Cmd's Env,
// per §6's subprocess environment contract.
func (c SDFSContext) Environ() []string {
	names := []string{
		"SDFS_SERIAL", "SDFS_PAGE", "SDFS_PAGE_NAME", "SDFS_PAGE_DIRECTORY",
		"SDFS_KEY_ROW", "SDFS_KEY_COL", "SDFS_KEY_NAME", "SDFS_EVENT",
		"SDFS_EVENT_FILE", "SDFS_PRESSED_AT", "SDFS_PRESS_DURATION",
	}
	env := make([]string, 0, len(names))
	for _, n := range names {
		if v, ok := c.LookupSDFS(n); ok {
			env = append(env, n+"="+v)
		}
	}
	return append(os.Environ(), env...)
}
