package engine

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA" (leading '#' optional).
// Missing alpha means fully opaque.
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, configErrorf("color", "malformed color %q", s)
	}

	var v [4]uint8
	v[3] = 0xFF
	for i := 0; i < len(hex)/2; i++ {
		hi, ok1 := hexDigit(hex[2*i])
		lo, ok2 := hexDigit(hex[2*i+1])
		if !ok1 || !ok2 {
			return color.NRGBA{}, configErrorf("color", "malformed color %q", s)
		}
		v[i] = hi<<4 | lo
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// gradient is a resolved two-stop linear gradient.
type gradient struct {
	Start     color.NRGBA
	End       color.NRGBA
	Direction string // "vertical" or "horizontal"
}

// lerpColor interpolates between two colors; f is clamped to [0,1].
func lerpColor(a, b color.NRGBA, f float64) color.NRGBA {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*f + 0.5)
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}

// fillGradient paints dst with a per-row (vertical) or per-column
// (horizontal) interpolation from g.Start to g.End. The first row/column
// is exactly the start color and the last is exactly the end color.
func fillGradient(dst *image.NRGBA, g gradient) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	if g.Direction == DirectionHorizontal {
		for x := 0; x < w; x++ {
			f := 0.0
			if w > 1 {
				f = float64(x) / float64(w-1)
			}
			c := lerpColor(g.Start, g.End, f)
			for y := 0; y < h; y++ {
				dst.SetNRGBA(b.Min.X+x, b.Min.Y+y, c)
			}
		}
		return
	}

	for y := 0; y < h; y++ {
		f := 0.0
		if h > 1 {
			f = float64(y) / float64(h-1)
		}
		c := lerpColor(g.Start, g.End, f)
		row := dst.Pix[dst.PixOffset(b.Min.X, b.Min.Y+y):dst.PixOffset(b.Min.X+w, b.Min.Y+y)]
		for i := 0; i < len(row); i += 4 {
			row[i] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	}
}

// fillSolid paints dst with a single color, keeping its alpha channel.
func fillSolid(dst *image.NRGBA, c color.NRGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
