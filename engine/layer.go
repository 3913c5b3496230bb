package engine

import (
	"image"

	"golang.org/x/image/draw"
)

// renderedLayer is the compositing-ready form of one overlay: a raster (or
// time-varying raster for animated text), its resolved top-left position
// and its visible window. Windows are already intersected with the
// background's duration.
type renderedLayer struct {
	index int
	pos   image.Point
	start float64
	end   float64

	static *image.NRGBA
	anim   *textAnimation // non-nil for char-animated text
}

// active reports whether the layer is visible at timestamp t.
func (l *renderedLayer) active(t float64) bool {
	return t >= l.start && t < l.end
}

// frameAt returns the layer raster for timestamp t. Static layers always
// return the same buffer; animated text re-renders its scratch buffer.
func (l *renderedLayer) frameAt(t float64) *image.NRGBA {
	if l.anim != nil {
		return l.anim.frameAt(t)
	}
	return l.static
}

// compositeOver alpha-blends src onto dst with its top-left at pos.
// Portions outside dst are clipped, never an error.
func compositeOver(dst *image.NRGBA, src *image.NRGBA, pos image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(pos)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}
