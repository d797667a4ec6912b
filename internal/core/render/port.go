// Package render implements the per-key layered composition pipeline of
// spec.md §4.5 and the rate-limited Image Writer of §4.6. Grounded on the
// teacher's rendering package structure (a pure composition pass over a
// domain model, delegating actual pixel work to a narrow port so the core
// package stays free of image-library imports), generalized here from
// diagram rendering to per-key raster composition.
package render

import (
	"image"
	"image/draw"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

// Rasterizer is the port every pixel-level operation in the pipeline goes
// through. internal/adapters/rasterize provides the concrete implementation
// over golang.org/x/image/draw, image/draw, golang.org/x/image/font, and
// freetype; render itself never imports an image-codec or font library
// directly.
type Rasterizer interface {
	// LoadImage decodes the file at path (following symlinks), returning
	// it as an RGBA source ready for compositing.
	LoadImage(path string) (image.Image, error)

	// DrawPrimitive renders one `draw=` shape into a transparent buffer of
	// the given size.
	DrawPrimitive(p Primitive, size image.Point) (image.Image, error)

	// Crop returns the sub-image of src described by the rectangle (in
	// source pixel coordinates).
	Crop(src image.Image, rect image.Rectangle) image.Image

	// Rotate rotates src by degrees clockwise, returning a new
	// image sized to its bounding box.
	Rotate(src image.Image, degrees float64) image.Image

	// ResizeToFit scales src to fit within (w,h) preserving aspect ratio,
	// enlarging if src is smaller than the target.
	ResizeToFit(src image.Image, w, h int) image.Image

	// Colorize replaces every opaque pixel's RGB with hexColor, preserving
	// the source alpha channel.
	Colorize(src image.Image, hexColor string) image.Image

	// Opacity scales every pixel's alpha channel by factor (0..1).
	Opacity(src image.Image, factor float64) image.Image

	// Paste draws src onto dst at the given top-left offset, using src's
	// own alpha as the compositing mask.
	Paste(dst draw.Image, src image.Image, at image.Point)

	// MeasureText returns the pixel bounding box text would occupy at the
	// given weight/italic/size, without wrapping.
	MeasureText(text string, weight entities.FontWeight, italic bool, sizePx float64) (width, height int)

	// WrapText word-wraps text to fit maxWidth pixels at the given
	// weight/italic/size, breaking mid-word only when a single word
	// exceeds maxWidth on its own, per §4.5 step 4's "minimum-length
	// algorithm".
	WrapText(text string, weight entities.FontWeight, italic bool, sizePx float64, maxWidth int) []string

	// RenderText rasterizes one or more lines of shaped text (already
	// wrapped) into a new image sized to their combined bounding box,
	// colored with hexColor.
	RenderText(lines []string, weight entities.FontWeight, italic bool, sizePx float64, hexColor string) image.Image

	// EncodeNative converts an RGBA frame to the device's native key
	// format (e.g. quantized BMP/JPEG), per §4.5 step 5.
	EncodeNative(img image.Image, format string) ([]byte, error)

	// NewCanvas returns an opaque black RGBA canvas of the given size,
	// per §4.5 step 2.
	NewCanvas(w, h int) draw.Image
}

// Primitive is the resolved geometry for one `draw=…` layer.
type Primitive struct {
	Kind    entities.DrawPrimitive
	Coords  []float64 // resolved to pixels
	Outline string
	Fill    string
	Width   float64
	Radius  float64
	AngleStart, AngleEnd float64
}
