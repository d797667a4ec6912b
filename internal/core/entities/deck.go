package entities

// Deck is the root entity of one physical (or headless) Stream Deck. Unlike
// every other kind, a Deck is not versioned against siblings — one Deck
// exists per watched root directory for the lifetime of the process.
type Deck struct {
	Common

	// Serial is the device serial number, used to reconnect after unplug.
	Serial string

	// Rows, Cols describe the key grid.
	Rows, Cols int

	// KeyWidth, KeyHeight are the pixel dimensions of a single key slot.
	KeyWidth, KeyHeight int

	// Brightness is 0-100.
	Brightness int

	// ModelClass names the device class (from the `.model` file), used to
	// reconstruct geometry when the physical device is absent.
	ModelClass string

	// Pages, Events, and Vars are the deck's direct children, each indexed
	// by identifier and holding every version of that identifier (§3, §4.2).
	Pages  map[PageID]*VersionSlot
	Events map[EventKind]*VersionSlot
	Vars   map[VarName]*VersionSlot
}

func (d *Deck) Kind() Kind { return KindDeck }

// NewDeck builds a Deck from its `.model` file configuration. Decks are not
// parsed from a basename like other entities; geometry comes from the
// device driver when connected, or from the `.model` file otherwise.
func NewDeck(path, modelClass string, rows, cols, keyW, keyH int) *Deck {
	return &Deck{
		Common:     Common{EntityPath: path},
		ModelClass: modelClass,
		Rows:       rows,
		Cols:       cols,
		KeyWidth:   keyW,
		KeyHeight:  keyH,
		Brightness: 100,
		Pages:      make(map[PageID]*VersionSlot),
		Events:     make(map[EventKind]*VersionSlot),
		Vars:       make(map[VarName]*VersionSlot),
	}
}

// Validate checks the deck's own invariants (grid must be positive).
func (d *Deck) Validate() error {
	var errs ValidationErrors
	if d.Rows <= 0 || d.Cols <= 0 {
		errs.Add("Deck", "grid", "", "rows and cols must be positive", nil)
	}
	if d.Brightness < 0 || d.Brightness > 100 {
		errs.Add("Deck", "Brightness", "", "must be within 0-100", nil)
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ClampBrightness clamps a requested brightness delta/absolute value to
// [0,100] and returns the new brightness.
func (d *Deck) ClampBrightness(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
