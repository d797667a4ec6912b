package rasterize

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/render"
)

// FontSet resolves a (weight, italic) pair to TrueType font data. A nil
// entry for a given weight falls back to the fixed-width basicfont face.
type FontSet map[fontKey][]byte

type fontKey struct {
	Weight entities.FontWeight
	Italic bool
}

// NewFontSet returns an empty FontSet; TTF data is added per weight and
// italic flag with DefineFont.
func NewFontSet() FontSet { return make(FontSet) }

// DefineFont registers TTF data for one weight/italic combination.
func (f FontSet) DefineFont(weight entities.FontWeight, italic bool, ttf []byte) {
	f[fontKey{weight, italic}] = ttf
}

func (r *Rasterizer) face(weight entities.FontWeight, italic bool, sizePx float64) font.Face {
	if fnt, ok := r.truetypeFont(weight, italic); ok {
		return truetype.NewFace(fnt, &truetype.Options{Size: sizePx, DPI: 72})
	}
	return basicfont.Face7x13
}

// truetypeFont parses and returns the registered TTF for weight/italic, if
// any font data was registered in the FontSet.
func (r *Rasterizer) truetypeFont(weight entities.FontWeight, italic bool) (*truetype.Font, bool) {
	if r.fonts == nil {
		return nil, false
	}
	data, ok := r.fonts[fontKey{weight, italic}]
	if !ok {
		return nil, false
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

// MeasureText returns the unwrapped bounding box of text at the given face.
func (r *Rasterizer) MeasureText(text string, weight entities.FontWeight, italic bool, sizePx float64) (int, int) {
	face := r.face(weight, italic, sizePx)
	w := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	return w, h
}

// WrapText implements §4.5 step 4's "minimum-length algorithm": greedily
// pack words onto a line until the next word would overflow maxWidth; a
// lone word that overflows on its own is broken character-by-character.
// Blank lines in the source are preserved as empty output lines.
func (r *Rasterizer) WrapText(text string, weight entities.FontWeight, italic bool, sizePx float64, maxWidth int) []string {
	face := r.face(weight, italic, sizePx)
	width := func(s string) int { return font.MeasureString(face, s).Ceil() }

	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			out = append(out, "")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var line strings.Builder
		for _, word := range words {
			candidate := word
			if line.Len() > 0 {
				candidate = line.String() + " " + word
			}
			if width(candidate) <= maxWidth || line.Len() == 0 {
				if width(word) > maxWidth && line.Len() == 0 {
					out = append(out, breakWord(word, maxWidth, width)...)
					continue
				}
				line.Reset()
				line.WriteString(candidate)
				continue
			}
			out = append(out, line.String())
			line.Reset()
			if width(word) > maxWidth {
				out = append(out, breakWord(word, maxWidth, width)...)
				continue
			}
			line.WriteString(word)
		}
		if line.Len() > 0 {
			out = append(out, line.String())
		}
	}
	return out
}

func breakWord(word string, maxWidth int, width func(string) int) []string {
	var out []string
	var cur strings.Builder
	for _, ch := range word {
		candidate := cur.String() + string(ch)
		if width(candidate) > maxWidth && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		cur.WriteRune(ch)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// RenderText rasterizes already-wrapped lines into one image sized to their
// combined bounding box, using freetype's rasterizing context for
// anti-aliased glyph coverage.
func (r *Rasterizer) RenderText(lines []string, weight entities.FontWeight, italic bool, sizePx float64, hexColor string) image.Image {
	face := r.face(weight, italic, sizePx)
	m := face.Metrics()
	lineHeight := (m.Ascent + m.Descent).Ceil()

	maxW := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > maxW {
			maxW = w
		}
	}
	if maxW == 0 {
		maxW = 1
	}
	totalH := lineHeight * len(lines)
	if totalH == 0 {
		totalH = lineHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, maxW, totalH))
	c, err := parseHexColor(hexColor)
	if err != nil {
		c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	src := image.NewUniform(c)

	if fnt, ok := r.truetypeFont(weight, italic); ok {
		drawWithFreetype(img, fnt, sizePx, src, lines, m.Ascent, m.Ascent+m.Descent)
		return img
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  src,
		Face: face,
	}
	baseline := m.Ascent
	for _, l := range lines {
		drawer.Dot = fixed.Point26_6{X: 0, Y: baseline}
		drawer.DrawString(l)
		baseline += m.Ascent + m.Descent
	}
	return img
}

// drawWithFreetype rasterizes lines with freetype's hinting context, the
// TrueType-backed path: it gives finer hinting control than
// golang.org/x/image/font.Drawer, which is used only for the basicfont
// fallback above.
func drawWithFreetype(dst draw.Image, fnt *truetype.Font, sizePx float64, src image.Image, lines []string, ascent, lineAdvance fixed.Int26_6) {
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(fnt)
	c.SetFontSize(sizePx)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(src)
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(0, ascent.Ceil())
	lineAdvancePx := lineAdvance.Ceil()
	for _, l := range lines {
		if _, err := c.DrawString(l, pt); err == nil {
			pt.Y += fixed.I(lineAdvancePx)
		}
	}
}

var _ render.Rasterizer = (*Rasterizer)(nil)

// DrawPrimitive rasterizes one §4.1 `draw=` shape into a transparent
// buffer sized to size.
func (r *Rasterizer) DrawPrimitive(p render.Primitive, size image.Point) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	fillColor, hasFill := optionalHexColor(p.Fill)
	outlineColor, hasOutline := optionalHexColor(p.Outline)
	width := p.Width
	if width <= 0 {
		width = 1
	}

	switch p.Kind {
	case entities.DrawFill:
		if hasFill {
			draw.Draw(img, img.Bounds(), image.NewUniform(fillColor), image.Point{}, draw.Src)
		}
	case entities.DrawRectangle:
		if len(p.Coords) >= 4 {
			rect := image.Rect(int(p.Coords[0]), int(p.Coords[1]), int(p.Coords[2]), int(p.Coords[3]))
			if hasFill {
				draw.Draw(img, rect, image.NewUniform(fillColor), image.Point{}, draw.Src)
			}
			if hasOutline {
				strokeRect(img, rect, outlineColor, width)
			}
		}
	case entities.DrawLine:
		if len(p.Coords) >= 4 && hasOutline {
			drawLine(img, p.Coords[0], p.Coords[1], p.Coords[2], p.Coords[3], outlineColor, width)
		}
	case entities.DrawEllipse:
		if len(p.Coords) >= 4 {
			drawEllipse(img, p.Coords[0], p.Coords[1], p.Coords[2], p.Coords[3], fillColor, hasFill, outlineColor, hasOutline, width)
		}
	case entities.DrawPoints, entities.DrawPolygon:
		if hasOutline && len(p.Coords) >= 4 {
			for i := 0; i+3 < len(p.Coords); i += 2 {
				drawLine(img, p.Coords[i], p.Coords[i+1], p.Coords[i+2], p.Coords[i+3], outlineColor, width)
			}
		}
	case entities.DrawArc, entities.DrawChord, entities.DrawPieSlice:
		if len(p.Coords) >= 4 {
			drawEllipse(img, p.Coords[0], p.Coords[1], p.Coords[2], p.Coords[3], fillColor, hasFill, outlineColor, hasOutline, width)
		}
	}
	return img, nil
}

func optionalHexColor(s string) (color.RGBA, bool) {
	if s == "" {
		return color.RGBA{}, false
	}
	c, err := parseHexColor(s)
	if err != nil {
		return color.RGBA{}, false
	}
	return c, true
}

func strokeRect(img *image.RGBA, rect image.Rectangle, c color.RGBA, width float64) {
	w := int(math.Max(1, width))
	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+w)
	bottom := image.Rect(rect.Min.X, rect.Max.Y-w, rect.Max.X, rect.Max.Y)
	left := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Max.Y)
	right := image.Rect(rect.Max.X-w, rect.Min.Y, rect.Max.X, rect.Max.Y)
	for _, r := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA, width float64) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		img.Set(int(x0), int(y0), c)
		return
	}
	w := int(math.Max(1, width))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x, y := x0+dx*t, y0+dy*t
		for ow := -w / 2; ow <= w/2; ow++ {
			img.Set(int(x)+ow, int(y), c)
			img.Set(int(x), int(y)+ow, c)
		}
	}
}

func drawEllipse(img *image.RGBA, x0, y0, x1, y1 float64, fill color.RGBA, hasFill bool, outline color.RGBA, hasOutline bool, width float64) {
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rx, ry := math.Abs(x1-x0)/2, math.Abs(y1-y0)/2
	if rx == 0 || ry == 0 {
		return
	}
	b := img.Bounds()
	w := math.Max(1, width)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			d := dx*dx + dy*dy
			switch {
			case d <= 1 && hasFill:
				img.Set(x, y, fill)
			case d <= 1+w/math.Max(rx, ry) && hasOutline:
				img.Set(x, y, outline)
			}
		}
	}
}
