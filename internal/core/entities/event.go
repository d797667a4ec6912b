package entities

import "time"

// ActionMode enumerates how an event's "Run" step (§4.9 step 4) executes.
type ActionMode string

const (
	ModePath       ActionMode = "path"
	ModeInside     ActionMode = "inside"
	ModeCommand    ActionMode = "command"
	ModePage       ActionMode = "page"
	ModeBrightness ActionMode = "brightness"
)

// EventArgs holds the arguments parsed from an `ON_<KIND>[;...]` file —
// §4.1's "event" attribute family.
type EventArgs struct {
	Disabled    bool    `arg:"disabled"`
	Name        string  `arg:"name"`
	Ref         string  `arg:"ref"`
	File        string  `arg:"file"`
	Slash       string  `arg:"slash"`
	Semicolon   string  `arg:"semicolon"`
	Wait        int     `arg:"wait"`
	Every       int     `arg:"every"`
	MaxRuns     int     `arg:"max-runs"`
	Command     string  `arg:"command"`
	Detach      bool    `arg:"detach"`
	Unique      bool    `arg:"unique"`
	DurationMin int     `arg:"duration-min"`
	DurationMax int     `arg:"duration-max"`
	Brightness  string  `arg:"brightness"`
	Page        string  `arg:"page"`
	Overlay     bool    `arg:"overlay"`
}

// Event is a file matching `ON_<KIND>[;...]`.
type Event struct {
	Common
	EventKind EventKind
	Args      EventArgs
}

func (e *Event) Kind() Kind { return KindEvent }

// NewEvent builds an Event candidate. kind must already have been extracted
// from the basename's `ON_<KIND>` main token by the grammar package.
func NewEvent(path string, ctime time.Time, kind EventKind, attrs Attrs) (*Event, error) {
	var args EventArgs
	if err := decodeAttrs(attrs, &args); err != nil {
		return nil, NewValidationError("Event", "args", "", "could not decode arguments", err)
	}
	return &Event{
		Common: Common{
			EntityPath:  path,
			ChangeTime:  ctime,
			IsDisabled:  args.Disabled,
			DisplayName: args.Name,
			Attrs:       attrs,
			RefTarget:   args.Ref,
		},
		EventKind: kind,
		Args:      args,
	}, nil
}

// Mode derives the action mode (§4.9 step 4) from which arguments are set.
func (e *Event) Mode() ActionMode {
	switch {
	case e.Args.Page != "":
		return ModePage
	case e.Args.Brightness != "":
		return ModeBrightness
	case e.Args.Command != "":
		return ModeCommand
	case e.Args.File == "__inside__":
		return ModeInside
	default:
		return ModePath
	}
}

// Repeatable reports whether `every=` is honored for this event kind, per
// §4.9 step 5 ("Allowed only for press and start").
func (e *Event) Repeatable() bool {
	return e.Args.Every > 0 && (e.EventKind == EventPress || e.EventKind == EventStart)
}
