package entities

import "time"

// FontWeight enumerates the recognized `weight=` values.
type FontWeight string

const (
	WeightThin    FontWeight = "thin"
	WeightLight   FontWeight = "light"
	WeightRegular FontWeight = "regular"
	WeightMedium  FontWeight = "medium"
	WeightBold    FontWeight = "bold"
	WeightBlack   FontWeight = "black"
)

// Align/Valign enumerate the recognized alignment values.
type Align string
type VAlign string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"

	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// TextLineArgs holds the arguments parsed from a `TEXT[;...]` file — §4.1's
// "text" attribute family.
type TextLineArgs struct {
	Disabled  bool       `arg:"disabled"`
	Name      string     `arg:"name"`
	Ref       string     `arg:"ref"`
	Line      int        `arg:"line"`
	File      string     `arg:"file"`
	Slash     string     `arg:"slash"`
	Semicolon string     `arg:"semicolon"`
	Text      string     `arg:"text"`
	Size      Dimension  `arg:"size"`
	Weight    FontWeight `arg:"weight"`
	Italic    bool       `arg:"italic"`
	Align     Align      `arg:"align"`
	VAlign    VAlign     `arg:"valign"`
	Color     string     `arg:"color"`
	Opacity   float64    `arg:"opacity"`
	Wrap      bool       `arg:"wrap"`
	Margin    Margin     `arg:"margin"`
	Scroll    float64    `arg:"scroll"`
}

// DefaultLine mirrors DefaultLayer's "-1 means the only one" convention.
const DefaultLine LineID = -1

// TextLine is a file matching `TEXT[;...]`.
type TextLine struct {
	Common
	ID   LineID
	Args TextLineArgs
}

func (t *TextLine) Kind() Kind { return KindTextLine }

// NewTextLine builds a TextLine candidate from a parsed attribute bag.
func NewTextLine(path string, ctime time.Time, attrs Attrs) (*TextLine, error) {
	args := TextLineArgs{
		Line:   int(DefaultLine),
		Align:  AlignCenter,
		VAlign: VAlignMiddle,
		Weight: WeightRegular,
		Opacity: 1,
	}
	if err := decodeAttrs(attrs, &args); err != nil {
		return nil, NewValidationError("TextLine", "args", "", "could not decode arguments", err)
	}
	return &TextLine{
		Common: Common{
			EntityPath:  path,
			ChangeTime:  ctime,
			IsDisabled:  args.Disabled,
			DisplayName: args.Name,
			Attrs:       attrs,
			RefTarget:   args.Ref,
		},
		ID:   LineID(args.Line),
		Args: args,
	}, nil
}

// Scrollable reports whether this line is configured to scroll.
func (t *TextLine) Scrollable() bool { return t.Args.Scroll != 0 }
