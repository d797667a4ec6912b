package entities

import "time"

// LayerArgs holds the arguments parsed from an `IMAGE[;...]` file — §4.1's
// "layer" attribute family.
type LayerArgs struct {
	Disabled  bool    `arg:"disabled"`
	Name      string  `arg:"name"`
	Ref       string  `arg:"ref"`
	Layer     int     `arg:"layer"`
	File      string  `arg:"file"`
	Slash     string  `arg:"slash"`
	Semicolon string  `arg:"semicolon"`
	Colorize  string  `arg:"colorize"`
	Margin    Margin  `arg:"margin"`
	Crop      Crop    `arg:"crop"`
	Opacity   float64 `arg:"opacity"`
	Rotate    float64 `arg:"rotate"`
	Draw      string  `arg:"draw"`
	Coords    Coords  `arg:"coords"`
	Outline   string  `arg:"outline"`
	Fill      string  `arg:"fill"`
	Width     float64 `arg:"width"`
	Radius    float64 `arg:"radius"`
	Angles    Angles  `arg:"angles"`
}

// DefaultLayer is the identifier used when no `layer=` argument is given:
// "the only image when there are no numbered layers" (§3).
const DefaultLayer LayerID = -1

// Layer is a file matching `IMAGE[;...]`.
type Layer struct {
	Common
	ID   LayerID
	Args LayerArgs
}

func (l *Layer) Kind() Kind { return KindLayer }

// NewLayer builds a Layer candidate from a parsed attribute bag.
func NewLayer(path string, ctime time.Time, attrs Attrs) (*Layer, error) {
	args := LayerArgs{Layer: int(DefaultLayer), Opacity: 1, Width: 1}
	if err := decodeAttrs(attrs, &args); err != nil {
		return nil, NewValidationError("Layer", "args", "", "could not decode arguments", err)
	}
	return &Layer{
		Common: Common{
			EntityPath:  path,
			ChangeTime:  ctime,
			IsDisabled:  args.Disabled,
			DisplayName: args.Name,
			Attrs:       attrs,
			RefTarget:   args.Ref,
		},
		ID:   LayerID(args.Layer),
		Args: args,
	}, nil
}

// DrawPrimitive enumerates the shapes recognized by `draw=`.
type DrawPrimitive string

const (
	DrawLine      DrawPrimitive = "line"
	DrawRectangle DrawPrimitive = "rectangle"
	DrawFill      DrawPrimitive = "fill"
	DrawPoints    DrawPrimitive = "points"
	DrawPolygon   DrawPrimitive = "polygon"
	DrawEllipse   DrawPrimitive = "ellipse"
	DrawArc       DrawPrimitive = "arc"
	DrawChord     DrawPrimitive = "chord"
	DrawPieSlice  DrawPrimitive = "pieslice"
)

// IsDrawn reports whether this layer is a drawn primitive rather than a
// file-backed image.
func (l *Layer) IsDrawn() bool { return l.Args.Draw != "" }
