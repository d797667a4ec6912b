package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// KeyInput is everything the pipeline needs about one key to produce a
// frame: its active layers and text lines (already version-resolved by the
// reconciler), the key's pixel geometry, and an optional darkening factor
// from the overlay stack (§4.5's "Overlay darkening").
type KeyInput struct {
	Width, Height int
	Layers        []*entities.Layer
	Lines         []*entities.TextLine
	NativeFormat  string
	OverlayDepth  int // N in "divided by 1+3N"; 0 means no darkening
	ScrollOffsets map[entities.LineID]float64 // pixels, signed, from the scroller
}

// Compositor runs the per-key pipeline of §4.5 against a Rasterizer port.
type Compositor struct {
	Ras Rasterizer
}

// NewCompositor returns a Compositor bound to the given Rasterizer.
func NewCompositor(r Rasterizer) *Compositor { return &Compositor{Ras: r} }

// Compose runs steps 1-4 of §4.5 and returns the final RGBA frame (step 5,
// native-format encoding, is a separate call so the Image Writer can choose
// whether to re-encode on every scroll tick or cache the RGBA).
func (c *Compositor) Compose(in KeyInput) (image.Image, error) {
	layers := activeLayers(in.Layers)
	lines := activeLines(in.Lines)

	canvas := c.Ras.NewCanvas(in.Width, in.Height)

	for _, l := range layers {
		img, err := c.renderLayer(l, in.Width, in.Height)
		if err != nil {
			return nil, fmt.Errorf("render: layer %v: %w", l.ID, err)
		}
		if img == nil {
			continue
		}
		pt := pasteOrigin(l.Args.Margin, in.Width, in.Height, img.Bounds().Dx(), img.Bounds().Dy())
		c.Ras.Paste(canvas, img, pt)
	}

	for _, t := range lines {
		img, err := c.renderLine(t, in.Width, in.Height, in.ScrollOffsets[t.ID])
		if err != nil {
			return nil, fmt.Errorf("render: line %v: %w", t.ID, err)
		}
		if img == nil {
			continue
		}
		pt := pasteOrigin(t.Args.Margin, in.Width, in.Height, img.Bounds().Dx(), img.Bounds().Dy())
		c.Ras.Paste(canvas, img, pt)
	}

	if in.OverlayDepth > 0 {
		return darken(canvas, in.OverlayDepth), nil
	}
	return canvas, nil
}

// Encode runs step 5: convert the composed RGBA frame to the device's
// native key format.
func (c *Compositor) Encode(frame image.Image, nativeFormat string) ([]byte, error) {
	return c.Ras.EncodeNative(frame, nativeFormat)
}

// activeLayers implements §4.5 step 1 for layers: order ascending by ID,
// drop disabled, and drop the implicit layer=-1 entry if more than one
// layer is present.
func activeLayers(all []*entities.Layer) []*entities.Layer {
	var kept []*entities.Layer
	for _, l := range all {
		if !l.Disabled() {
			kept = append(kept, l)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	if len(kept) > 1 {
		filtered := kept[:0]
		for _, l := range kept {
			if l.ID != entities.DefaultLayer {
				filtered = append(filtered, l)
			}
		}
		kept = filtered
	}
	return kept
}

// activeLines mirrors activeLayers for text lines.
func activeLines(all []*entities.TextLine) []*entities.TextLine {
	var kept []*entities.TextLine
	for _, t := range all {
		if !t.Disabled() {
			kept = append(kept, t)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	if len(kept) > 1 {
		filtered := kept[:0]
		for _, t := range kept {
			if t.ID != entities.DefaultLine {
				filtered = append(filtered, t)
			}
		}
		kept = filtered
	}
	return kept
}

// renderLayer runs §4.5 step 3 (a-g) for one layer.
func (c *Compositor) renderLayer(l *entities.Layer, keyW, keyH int) (image.Image, error) {
	var src image.Image
	var err error

	if l.IsDrawn() {
		src, err = c.Ras.DrawPrimitive(primitiveFor(l, keyW, keyH), image.Pt(keyW, keyH))
	} else {
		path := l.Args.File
		if path == "" {
			return nil, nil
		}
		src, err = c.Ras.LoadImage(path)
	}
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}

	if hasCrop(l.Args.Crop) {
		b := src.Bounds()
		rect := cropRect(l.Args.Crop, b.Dx(), b.Dy())
		src = c.Ras.Crop(src, rect)
	}
	if l.Args.Rotate != 0 {
		// "the library rotates clockwise; negate the input" (§4.5 step 3c).
		src = c.Ras.Rotate(src, -l.Args.Rotate)
	}

	slotW, slotH := marginSlot(l.Args.Margin, keyW, keyH)
	src = c.Ras.ResizeToFit(src, slotW, slotH)

	if l.Args.Colorize != "" {
		src = c.Ras.Colorize(src, l.Args.Colorize)
	}
	if l.Args.Opacity != 1 {
		src = c.Ras.Opacity(src, l.Args.Opacity)
	}
	return src, nil
}

// renderLine runs §4.5 step 4 for one text line.
func (c *Compositor) renderLine(t *entities.TextLine, keyW, keyH int, scrollOffset float64) (image.Image, error) {
	text := t.Args.Text
	if text == "" && t.Args.File != "" {
		// Loaded elsewhere by the reconciler into Args.Text; render
		// pipeline treats Text as already resolved content.
		return nil, nil
	}
	if text == "" {
		return nil, nil
	}

	sizePx := t.Args.Size.Resolve(float64(keyH))
	slotW, slotH := marginSlot(t.Args.Margin, keyW, keyH)

	lines := []string{text}
	if t.Args.Wrap {
		lines = c.Ras.WrapText(text, t.Args.Weight, t.Args.Italic, sizePx, slotW)
	}

	rendered := c.Ras.RenderText(lines, t.Args.Weight, t.Args.Italic, sizePx, t.Args.Color)
	if rendered == nil {
		return nil, nil
	}
	if t.Args.Opacity != 1 {
		rendered = c.Ras.Opacity(rendered, t.Args.Opacity)
	}

	b := rendered.Bounds()
	cropRectForSlot := alignedCrop(t.Args.Align, t.Args.VAlign, b.Dx(), b.Dy(), slotW, slotH, scrollOffset, t.Args.Scroll != 0)
	return c.Ras.Crop(rendered, cropRectForSlot), nil
}

func primitiveFor(l *entities.Layer, keyW, keyH int) Primitive {
	coords := make([]float64, len(l.Args.Coords))
	for i, d := range l.Args.Coords {
		ref := float64(keyW)
		if i%2 == 1 {
			ref = float64(keyH)
		}
		coords[i] = d.Resolve(ref)
	}
	return Primitive{
		Kind:       entities.DrawPrimitive(l.Args.Draw),
		Coords:     coords,
		Outline:    l.Args.Outline,
		Fill:       l.Args.Fill,
		Width:      l.Args.Width,
		Radius:     l.Args.Radius,
		AngleStart: l.Args.Angles.Start,
		AngleEnd:   l.Args.Angles.End,
	}
}

func hasCrop(c entities.Crop) bool {
	return c.Left.Value != 0 || c.Top.Value != 0 || c.Right.Value != 0 || c.Bottom.Value != 0
}

func cropRect(c entities.Crop, srcW, srcH int) image.Rectangle {
	l := int(c.Left.Resolve(float64(srcW)))
	t := int(c.Top.Resolve(float64(srcH)))
	r := srcW - int(c.Right.Resolve(float64(srcW)))
	b := srcH - int(c.Bottom.Resolve(float64(srcH)))
	return image.Rect(l, t, r, b)
}

func marginSlot(m entities.Margin, keyW, keyH int) (w, h int) {
	left := int(m.Left.Resolve(float64(keyW)))
	right := int(m.Right.Resolve(float64(keyW)))
	top := int(m.Top.Resolve(float64(keyH)))
	bottom := int(m.Bottom.Resolve(float64(keyH)))
	w = keyW - left - right
	h = keyH - top - bottom
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func pasteOrigin(m entities.Margin, keyW, keyH, srcW, srcH int) image.Point {
	left := int(m.Left.Resolve(float64(keyW)))
	top := int(m.Top.Resolve(float64(keyH)))
	slotW, slotH := marginSlot(m, keyW, keyH)
	x := left + (slotW-srcW)/2
	y := top + (slotH-srcH)/2
	return image.Pt(x, y)
}

// alignedCrop computes the crop window (in the rendered text image's own
// coordinate space) that lands the text at its aligned position within the
// slot, offsetting by scrollOffset pixels when the line is scrolling.
func alignedCrop(align entities.Align, valign entities.VAlign, textW, textH, slotW, slotH int, scrollOffset float64, scrolling bool) image.Rectangle {
	var x0 int
	switch align {
	case entities.AlignLeft:
		x0 = 0
	case entities.AlignRight:
		x0 = textW - slotW
	default:
		x0 = (textW - slotW) / 2
	}
	var y0 int
	switch valign {
	case entities.VAlignTop:
		y0 = 0
	case entities.VAlignBottom:
		y0 = textH - slotH
	default:
		y0 = (textH - slotH) / 2
	}
	if scrolling {
		x0 += int(scrollOffset)
	}
	return image.Rect(x0, y0, x0+slotW, y0+slotH)
}

// darken implements §4.5's overlay darkening: every channel divided by
// 1+3N, where N is the number of overlay pages the key is drawn through.
func darken(src draw.Image, depth int) image.Image {
	b := src.Bounds()
	out := image.NewRGBA(b)
	divisor := uint32(1 + 3*depth)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{
				R: uint8((r >> 8) / divisor),
				G: uint8((g >> 8) / divisor),
				B: uint8((bl >> 8) / divisor),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}
