package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

type fakeRasterizer struct {
	drawCalls int
}

func (f *fakeRasterizer) LoadImage(path string) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img, nil
}

func (f *fakeRasterizer) DrawPrimitive(p Primitive, size image.Point) (image.Image, error) {
	f.drawCalls++
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0, 0, 255, 255}}, image.Point{}, draw.Src)
	return img, nil
}

func (f *fakeRasterizer) Crop(src image.Image, rect image.Rectangle) image.Image {
	b := src.Bounds()
	r := rect.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out
}

func (f *fakeRasterizer) Rotate(src image.Image, degrees float64) image.Image { return src }

func (f *fakeRasterizer) ResizeToFit(src image.Image, w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), src, image.Point{}, draw.Src)
	return out
}

func (f *fakeRasterizer) Colorize(src image.Image, hexColor string) image.Image { return src }
func (f *fakeRasterizer) Opacity(src image.Image, factor float64) image.Image   { return src }

func (f *fakeRasterizer) Paste(dst draw.Image, src image.Image, at image.Point) {
	r := src.Bounds().Add(at)
	draw.Draw(dst, r, src, image.Point{}, draw.Over)
}

func (f *fakeRasterizer) MeasureText(text string, weight entities.FontWeight, italic bool, sizePx float64) (int, int) {
	return len(text) * 6, int(sizePx)
}

func (f *fakeRasterizer) WrapText(text string, weight entities.FontWeight, italic bool, sizePx float64, maxWidth int) []string {
	return []string{text}
}

func (f *fakeRasterizer) RenderText(lines []string, weight entities.FontWeight, italic bool, sizePx float64, hexColor string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, int(sizePx)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func (f *fakeRasterizer) EncodeNative(img image.Image, format string) ([]byte, error) {
	b := img.Bounds()
	return make([]byte, b.Dx()*b.Dy()*3), nil
}

func (f *fakeRasterizer) NewCanvas(w, h int) draw.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}

func mustLayer(t *testing.T, basenameArgs entities.Attrs, id entities.LayerID) *entities.Layer {
	t.Helper()
	l, err := entities.NewLayer("/deck/PAGE_1/KEY_ROW_1_COL_1/IMAGE", time.Now(), basenameArgs)
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	l.ID = id
	return l
}

func TestComposeDropsImplicitLayerWhenMultiple(t *testing.T) {
	ras := &fakeRasterizer{}
	c := NewCompositor(ras)

	l1 := mustLayer(t, entities.Attrs{}, entities.DefaultLayer)
	l1.Args.File = "icon.png"
	l2 := mustLayer(t, entities.Attrs{}, 1)
	l2.Args.Draw = "rectangle"
	l2.Args.Fill = "#0000ff"

	frame, err := c.Compose(KeyInput{
		Width: 72, Height: 72,
		Layers: []*entities.Layer{l1, l2},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if frame == nil {
		t.Fatal("expected a composed frame")
	}
	if ras.drawCalls != 1 {
		t.Fatalf("drawCalls = %d, want 1 (the file-backed implicit layer should have been dropped)", ras.drawCalls)
	}
}

func TestComposeSingleImplicitLayerKept(t *testing.T) {
	ras := &fakeRasterizer{}
	c := NewCompositor(ras)

	l1 := mustLayer(t, entities.Attrs{}, entities.DefaultLayer)
	l1.Args.File = "icon.png"

	frame, err := c.Compose(KeyInput{Width: 72, Height: 72, Layers: []*entities.Layer{l1}})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if frame == nil {
		t.Fatal("expected a composed frame")
	}
}

func TestDarkenDividesChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{200, 100, 50, 255}}, image.Point{}, draw.Src)

	out := darken(img, 1) // divisor = 4
	r, g, b, a := out.At(0, 0).RGBA()
	if r>>8 != 50 || g>>8 != 25 || b>>8 != 12 || a>>8 != 255 {
		t.Fatalf("darken = (%d,%d,%d,%d), want (50,25,12,255)", r>>8, g>>8, b>>8, a>>8)
	}
}
