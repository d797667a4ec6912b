// Package rasterize is the concrete Rasterizer (core/render.Rasterizer)
// implementation: image decode, geometric transforms, font shaping, and
// native-format encoding, built on golang.org/x/image/draw (resizing),
// the stdlib image/draw compositor (crop/paste), golang.org/x/image/font,
// github.com/golang/freetype, and github.com/ericpauley/go-quantize.
// Grounded on the teacher's adapter layer (one package per external
// capability, behind a narrow core port).
package rasterize

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // register PNG decoding
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
	"github.com/ericpauley/go-quantize/quantize"
	ximgdraw "golang.org/x/image/draw"

	"github.com/twidi/streamdeckfs-go/internal/core/render"
)

// Rasterizer implements render.Rasterizer. It is stateless except for a
// font cache, so a single instance may be shared across decks.
type Rasterizer struct {
	fonts FontSet
}

// New returns a Rasterizer using fonts for text shaping. A nil FontSet
// falls back to the fixed-width basicfont face for every weight.
func New(fonts FontSet) *Rasterizer {
	return &Rasterizer{fonts: fonts}
}

var _ render.Rasterizer = (*Rasterizer)(nil)

// LoadImage decodes the file at path (symlinks are followed by the
// filesystem itself; os.Open resolves them transparently), then corrects
// for an embedded Exif orientation tag so a layer sourced from a
// camera-straight-out-of-phone JPEG isn't composited sideways.
func (r *Rasterizer) LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterize: open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("rasterize: decode %s: %w", path, err)
	}
	out := toRGBA(img)
	if orientation, ok := readOrientation(path); ok {
		out = toRGBA(applyOrientation(out, orientation))
	}
	return out, nil
}

// readOrientation looks up the Exif orientation tag (1-8) of a JPEG source
// file. PNGs carry orientation, if at all, in ancillary chunks rather than
// Exif, so pngStructureSane is used there instead purely to confirm the
// chunk stream parses (a malformed PNG is treated as "no orientation hint"
// rather than a hard decode failure, since image.Decode already succeeded).
func readOrientation(path string) (int, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		rawExif, err := exif.SearchFileAndExtractExif(path)
		if err != nil {
			return 0, false
		}
		tags, _, err := exif.GetFlatExifData(rawExif, nil)
		if err != nil {
			return 0, false
		}
		for _, tag := range tags {
			if tag.TagName == "Orientation" {
				if v, ok := tag.Value.([]uint16); ok && len(v) > 0 {
					return int(v[0]), true
				}
			}
		}
	case ".png":
		_, _ = pngStructureSane(path)
	}
	return 0, false
}

// applyOrientation rotates img per the Exif orientation codes 3, 6 and 8;
// every other value (including the mirrored codes 2, 4, 5 and 7) is a no-op.
func applyOrientation(img *image.RGBA, orientation int) image.Image {
	switch orientation {
	case 3:
		return rotate180(img)
	case 6:
		return rotate90CW(img)
	case 8:
		return rotate90CCW(img)
	default:
		return img
	}
}

func rotate180(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.X-1-x+b.Min.X, b.Max.Y-1-y+b.Min.Y, src.At(x, y))
		}
	}
	return out
}

func rotate90CW(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.Y-1-y, x, src.At(x, y))
		}
	}
	return out
}

func rotate90CCW(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(y, b.Max.X-1-x, src.At(x, y))
		}
	}
	return out
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, src, b.Min, draw.Src)
	return out
}

// NewCanvas returns an opaque black RGBA canvas, per §4.5 step 2.
func (r *Rasterizer) NewCanvas(w, h int) draw.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

// Crop returns the sub-image described by rect, clamped to src's bounds.
func (r *Rasterizer) Crop(src image.Image, rect image.Rectangle) image.Image {
	b := src.Bounds()
	clamped := rect.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	if clamped.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	out := image.NewRGBA(image.Rect(0, 0, clamped.Dx(), clamped.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min.Add(clamped.Min), draw.Src)
	return out
}

// Rotate rotates src by degrees clockwise around its center,
// resizing the output to the rotated bounding box.
func (r *Rasterizer) Rotate(src image.Image, degrees float64) image.Image {
	if degrees == 0 {
		return src
	}
	rad := degrees * math.Pi / 180
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	newW := int(math.Ceil(w*cos + h*sin))
	newH := int(math.Ceil(w*sin + h*cos))

	out := image.NewRGBA(image.Rect(0, 0, newW, newH))
	cx, cy := w/2, h/2
	ncx, ncy := float64(newW)/2, float64(newH)/2
	cosA, sinA := math.Cos(rad), math.Sin(rad)

	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			dx, dy := float64(x)-ncx, float64(y)-ncy
			// Inverse rotate to find the source sample.
			sx := dx*cosA + dy*sinA + cx
			sy := -dx*sinA + dy*cosA + cy
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			out.Set(x, y, src.At(b.Min.X+int(sx), b.Min.Y+int(sy)))
		}
	}
	return out
}

// ResizeToFit scales src to fit within (w,h), preserving aspect ratio and
// enlarging if smaller than the target, per §4.5 step 3d.
func (r *Rasterizer) ResizeToFit(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	scale := math.Min(float64(w)/float64(sw), float64(h)/float64(sh))
	tw, th := int(math.Round(float64(sw)*scale)), int(math.Round(float64(sh)*scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, tw, th))
	ximgdraw.CatmullRom.Scale(out, out.Bounds(), src, src.Bounds(), ximgdraw.Over, nil)
	return out
}

// Colorize replaces every pixel's RGB with hexColor, preserving alpha.
func (r *Rasterizer) Colorize(src image.Image, hexColor string) image.Image {
	c, err := parseHexColor(hexColor)
	if err != nil {
		return src
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := src.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: uint8(a >> 8)})
		}
	}
	return out
}

// Opacity scales the alpha channel of every pixel by factor.
func (r *Rasterizer) Opacity(src image.Image, factor float64) image.Image {
	if factor == 1 {
		return src
	}
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rr, g, bl, a := src.At(x, y).RGBA()
			na := uint8(float64(a>>8) * factor)
			out.Set(x, y, color.RGBA{R: uint8(rr >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: na})
		}
	}
	return out
}

// Paste draws src onto dst at the given offset using src's alpha as mask.
func (r *Rasterizer) Paste(dst draw.Image, src image.Image, at image.Point) {
	r2 := src.Bounds().Sub(src.Bounds().Min).Add(at)
	draw.Draw(dst, r2, src, src.Bounds().Min, draw.Over)
}

// EncodeNative converts the frame to the device's native key format. Two
// formats are supported: "jpeg" (most modern Stream Deck models) and "bmp"
// (legacy/original); anything else falls back to a raw RGB888 byte dump,
// matching a headless/test device.
func (r *Rasterizer) EncodeNative(img image.Image, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "bmp":
		return encodeBMP(img)
	default:
		return rawRGB(img), nil
	}
}

func rawRGB(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rr, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, byte(rr>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return out
}

// encodeBMP quantizes the image to a 256-color palette (go-quantize, the
// median-cut quantizer the original Python BMP path relies on for the
// original Stream Deck's indexed format) and writes an uncompressed 24-bit
// BMP, which every Stream Deck firmware generation accepts even when it
// doesn't require it.
func encodeBMP(img image.Image) ([]byte, error) {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, 256), img)
	paletted := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(paletted, paletted.Bounds(), img, img.Bounds().Min, draw.Src)

	b := paletted.Bounds()
	w, h := b.Dx(), b.Dy()
	rowSize := (w*3 + 3) &^ 3
	pixelDataSize := rowSize * h
	fileSize := 54 + pixelDataSize

	buf := bytes.NewBuffer(make([]byte, 0, fileSize))
	writeBMPHeader(buf, w, h, fileSize)
	row := make([]byte, rowSize)
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			rr, g, bl, _ := paletted.At(x, y).RGBA()
			row[x*3] = byte(bl >> 8)
			row[x*3+1] = byte(g >> 8)
			row[x*3+2] = byte(rr >> 8)
		}
		buf.Write(row)
	}
	return buf.Bytes(), nil
}

func writeBMPHeader(buf *bytes.Buffer, w, h, fileSize int) {
	le32 := func(v int) []byte {
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
	le16 := func(v int) []byte { return []byte{byte(v), byte(v >> 8)} }

	buf.WriteString("BM")
	buf.Write(le32(fileSize))
	buf.Write(le32(0))
	buf.Write(le32(54))
	buf.Write(le32(40))
	buf.Write(le32(w))
	buf.Write(le32(h))
	buf.Write(le16(1))
	buf.Write(le16(24))
	buf.Write(le32(0))
	buf.Write(le32(w * h * 3))
	buf.Write(le32(2835))
	buf.Write(le32(2835))
	buf.Write(le32(0))
	buf.Write(le32(0))
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("rasterize: invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// pngStructureSane parses the PNG chunk stream, purely to confirm it is
// well formed; streamdeckfs has no use for any individual chunk today, but
// a corrupt chunk stream is a useful early signal that a layer's source
// file is bad rather than merely exotic.
func pngStructureSane(path string) (bool, error) {
	mc := pngstructure.NewPngMediaParser()
	intfc, err := mc.ParseFile(path)
	if err != nil {
		return false, err
	}
	_, ok := intfc.(*pngstructure.ChunkSlice)
	return ok, nil
}
