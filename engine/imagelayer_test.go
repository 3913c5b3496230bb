package engine

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func writeTestPNG(t *testing.T, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillSolid(img, c)

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func imageOverlay(t *testing.T, mutate func(*Overlay)) *Overlay {
	t.Helper()
	ov := &Overlay{Type: OverlayImage, Duration: 2}
	if mutate != nil {
		mutate(ov)
	}
	if err := validateOverlay(ov, 0); err != nil {
		t.Fatalf("validateOverlay: %v", err)
	}
	return ov
}

func TestTargetSize(t *testing.T) {
	src := image.Rect(0, 0, 10, 8)
	frame := image.Point{X: 100, Y: 60}

	cases := []struct {
		name   string
		mutate func(*Overlay)
		want   image.Point
	}{
		{"default scale", nil, image.Point{X: 10, Y: 8}},
		{"uniform scale", func(ov *Overlay) { ov.Scale = 2 }, image.Point{X: 20, Y: 16}},
		{"fractional width", func(ov *Overlay) { ov.Width = fptr(0.5) }, image.Point{X: 50, Y: 8}},
		{"pixel width", func(ov *Overlay) { ov.Width = fptr(32) }, image.Point{X: 32, Y: 8}},
		{"fractional height", func(ov *Overlay) { ov.Height = fptr(0.25) }, image.Point{X: 10, Y: 15}},
		{"pixel height", func(ov *Overlay) { ov.Height = fptr(30) }, image.Point{X: 10, Y: 30}},
		{"width and height", func(ov *Overlay) { ov.Width = fptr(0.5); ov.Height = fptr(30) }, image.Point{X: 50, Y: 30}},
		{"explicit size beats scale", func(ov *Overlay) { ov.Scale = 3; ov.Width = fptr(40); ov.Height = fptr(20) }, image.Point{X: 40, Y: 20}},
		{"scale keeps missing dimension", func(ov *Overlay) { ov.Scale = 2; ov.Width = fptr(40) }, image.Point{X: 40, Y: 16}},
		{"floor of one pixel", func(ov *Overlay) { ov.Scale = 0.01 }, image.Point{X: 1, Y: 1}},
		{"boundary one is fractional", func(ov *Overlay) { ov.Width = fptr(1.0) }, image.Point{X: 100, Y: 8}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ov := imageOverlay(t, c.mutate)
			got := targetSize(ov, src, frame)
			if got != c.want {
				t.Fatalf("targetSize = %v; want %v", got, c.want)
			}
		})
	}
}

func TestRenderImageLayerScaleAndOpacity(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	path := writeTestPNG(t, "red.png", 10, 8, red)
	frame := image.Point{X: 100, Y: 60}

	ov := imageOverlay(t, func(ov *Overlay) {
		ov.Scale = 2
		ov.Opacity = fptr(0.5)
	})

	raster, err := renderImageLayer(ov, path, frame)
	if err != nil {
		t.Fatalf("renderImageLayer: %v", err)
	}
	if got := raster.Bounds().Size(); got != (image.Point{X: 20, Y: 16}) {
		t.Fatalf("raster size = %v; want 20x16", got)
	}
	center := raster.NRGBAAt(10, 8)
	if center.R != 255 || center.G != 0 || center.B != 0 {
		t.Fatalf("center color = %v; want red", center)
	}
	if center.A != 128 {
		t.Fatalf("center alpha = %d; want 128", center.A)
	}
}

func TestRotateImageExpandsBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	fillSolid(src, color.NRGBA{G: 255, A: 255})

	t.Run("quarter turn swaps dimensions", func(t *testing.T) {
		dst := rotateImage(src, 90)
		size := dst.Bounds().Size()
		if size.X < 20 || size.X > 21 || size.Y < 40 || size.Y > 41 {
			t.Fatalf("rotated size = %v; want about 20x40", size)
		}
	})

	t.Run("diagonal corners stay transparent", func(t *testing.T) {
		dst := rotateImage(src, 45)
		size := dst.Bounds().Size()
		if size.X <= 40 || size.Y <= 20 {
			t.Fatalf("rotated size %v did not expand", size)
		}
		if a := dst.NRGBAAt(0, 0).A; a != 0 {
			t.Fatalf("corner alpha = %d; want 0", a)
		}
		mid := dst.NRGBAAt(size.X/2, size.Y/2)
		if mid.G != 255 || mid.A != 255 {
			t.Fatalf("center pixel = %v; want opaque green", mid)
		}
	})
}

func TestRenderImageLayerBgCanvas(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	path := writeTestPNG(t, "red.png", 10, 8, red)
	frame := image.Point{X: 100, Y: 60}

	ov := imageOverlay(t, func(ov *Overlay) { ov.BgColor = "#00000080" })

	raster, err := renderImageLayer(ov, path, frame)
	if err != nil {
		t.Fatalf("renderImageLayer: %v", err)
	}
	if got := raster.Bounds().Size(); got != frame {
		t.Fatalf("canvas size = %v; want %v", got, frame)
	}

	corner := raster.NRGBAAt(0, 0)
	if corner != (color.NRGBA{A: 128}) {
		t.Fatalf("corner pixel = %v; want translucent black", corner)
	}
	center := raster.NRGBAAt(50, 30)
	if center.R != 255 || center.A != 255 {
		t.Fatalf("center pixel = %v; want opaque red", center)
	}
}

func TestBgCanvasIgnoresPositionSpec(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	path := writeTestPNG(t, "red.png", 10, 8, red)
	frame := image.Point{X: 100, Y: 60}

	positions := []string{`"center"`, `{"x": 0, "y": 0}`, `{"x": 1, "y": 1}`}
	var first *image.NRGBA
	for _, pos := range positions {
		doc := `{"overlays": [{"type": "image", "duration": 2, "bg_color": "#000000FF", "position": ` + pos + `}]}`
		cfg, err := ParseConfig(doc, nil)
		if err != nil {
			t.Fatalf("ParseConfig: %v", err)
		}
		ov := &cfg.Overlays[0]

		raster, err := renderImageLayer(ov, path, frame)
		if err != nil {
			t.Fatalf("renderImageLayer: %v", err)
		}
		if got := resolveOverlayPosition(ov, raster.Bounds().Size(), frame); got != (image.Point{}) {
			t.Fatalf("position %s resolved to %v; want origin", pos, got)
		}
		if first == nil {
			first = raster
			continue
		}
		if !bytes.Equal(raster.Pix, first.Pix) {
			t.Fatalf("position %s produced a different canvas", pos)
		}
	}
}

func TestRenderImageLayerDecodeError(t *testing.T) {
	frame := image.Point{X: 100, Y: 60}
	ov := imageOverlay(t, nil)

	t.Run("missing file", func(t *testing.T) {
		_, err := renderImageLayer(ov, filepath.Join(t.TempDir(), "nope.png"), frame)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("error = %v; want *DecodeError", err)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.png")
		if err := os.WriteFile(path, []byte("not image data"), 0o644); err != nil {
			t.Fatalf("write junk: %v", err)
		}
		_, err := renderImageLayer(ov, path, frame)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("error = %v; want *DecodeError", err)
		}
	})
}

func TestApplyOpacity(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 9, G: 8, B: 7, A: 200})
		}
	}
	applyOpacity(img, 0.5)

	got := img.NRGBAAt(1, 1)
	if got.A != 100 {
		t.Fatalf("alpha = %d; want 100", got.A)
	}
	if got.R != 9 || got.G != 8 || got.B != 7 {
		t.Fatalf("color channels changed: %v", got)
	}
}
