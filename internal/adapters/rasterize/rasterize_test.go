package rasterize

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
	"github.com/twidi/streamdeckfs-go/internal/core/render"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestResizeToFitPreservesAspect(t *testing.T) {
	r := New(nil)
	src := solidImage(100, 50, color.White)
	out := r.ResizeToFit(src, 40, 40)
	b := out.Bounds()
	if b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("ResizeToFit = %dx%d, want 40x20", b.Dx(), b.Dy())
	}
}

func TestColorizePreservesAlpha(t *testing.T) {
	r := New(nil)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{255, 0, 0, 128})
	out := r.Colorize(src, "#00ff00")
	rr, g, b, a := out.At(0, 0).RGBA()
	if g>>8 != 255 || rr>>8 != 0 || b>>8 != 0 || a>>8 != 128 {
		t.Fatalf("Colorize = (%d,%d,%d,%d), want (0,255,0,128)", rr>>8, g>>8, b>>8, a>>8)
	}
}

func TestOpacityScalesAlpha(t *testing.T) {
	r := New(nil)
	src := solidImage(2, 2, color.RGBA{255, 255, 255, 255})
	out := r.Opacity(src, 0.5)
	_, _, _, a := out.At(0, 0).RGBA()
	if a>>8 != 127 {
		t.Fatalf("Opacity alpha = %d, want ~127", a>>8)
	}
}

func TestEncodeNativeRawFallback(t *testing.T) {
	r := New(nil)
	img := solidImage(2, 2, color.White)
	data, err := r.EncodeNative(img, "unknown")
	if err != nil {
		t.Fatalf("EncodeNative: %v", err)
	}
	if len(data) != 2*2*3 {
		t.Fatalf("len(data) = %d, want 12", len(data))
	}
}

func TestEncodeNativeJPEG(t *testing.T) {
	r := New(nil)
	img := solidImage(8, 8, color.RGBA{10, 20, 30, 255})
	data, err := r.EncodeNative(img, "jpeg")
	if err != nil {
		t.Fatalf("EncodeNative jpeg: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty JPEG payload")
	}
}

func TestDrawPrimitiveRectangleFill(t *testing.T) {
	r := New(nil)
	out, err := r.DrawPrimitive(render.Primitive{
		Kind:   entities.DrawRectangle,
		Coords: []float64{0, 0, 4, 4},
		Fill:   "#ff0000",
	}, image.Pt(4, 4))
	if err != nil {
		t.Fatalf("DrawPrimitive: %v", err)
	}
	rr, _, _, a := out.At(1, 1).RGBA()
	if rr>>8 != 255 || a>>8 != 255 {
		t.Fatalf("fill pixel = (%d, a=%d), want red opaque", rr>>8, a>>8)
	}
}

func TestWrapTextBreaksOverlongWord(t *testing.T) {
	r := New(nil)
	lines := r.WrapText("supercalifragilisticexpialidocious", "regular", false, 13, 30)
	if len(lines) < 2 {
		t.Fatalf("expected the overlong word to be broken across multiple lines, got %v", lines)
	}
}

func TestMeasureTextNonZero(t *testing.T) {
	r := New(nil)
	w, h := r.MeasureText("hello", "regular", false, 13)
	if w <= 0 || h <= 0 {
		t.Fatalf("MeasureText = (%d,%d), want positive", w, h)
	}
}
