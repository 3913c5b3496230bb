package engine

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// renderImageLayer turns one source image plus an image overlay spec into a
// compositing-ready raster. Sizing order: explicit width/height win over
// scale; scale alone is uniform and preserves aspect ratio. Rotation is
// applied after sizing, about the layer center, expanding the bounds with
// transparent margins. Opacity multiplies the alpha channel uniformly.
func renderImageLayer(ov *Overlay, imagePath string, frame image.Point) (*image.NRGBA, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, &DecodeError{Path: imagePath, Err: err}
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: imagePath, Err: err}
	}

	img := scaleImage(src, targetSize(ov, src.Bounds(), frame))
	if ov.Rotation != 0 {
		img = rotateImage(img, ov.Rotation)
	}
	if *ov.Opacity < 1.0 {
		applyOpacity(img, *ov.Opacity)
	}

	// With a background color the renderable layer is a frame-filling
	// canvas with the image centered on it; the canvas alpha is the
	// color's own alpha.
	if ov.bgColor != nil {
		canvas := image.NewNRGBA(image.Rect(0, 0, frame.X, frame.Y))
		fillSolid(canvas, *ov.bgColor)
		center := image.Point{
			X: (frame.X - img.Bounds().Dx()) / 2,
			Y: (frame.Y - img.Bounds().Dy()) / 2,
		}
		compositeOver(canvas, img, center)
		return canvas, nil
	}
	return img, nil
}

// targetSize computes the post-sizing dimensions of the source image.
// Width/height values at or below 1.0 are fractions of the frame dimension,
// larger values absolute pixels. A missing dimension keeps the value from
// the scale step, matching the original document convention.
func targetSize(ov *Overlay, src image.Rectangle, frame image.Point) image.Point {
	w := int(float64(src.Dx())*ov.Scale + 0.5)
	h := int(float64(src.Dy())*ov.Scale + 0.5)

	if ov.Width != nil {
		if *ov.Width <= 1.0 {
			w = int(float64(frame.X)**ov.Width + 0.5)
		} else {
			w = int(*ov.Width)
		}
	}
	if ov.Height != nil {
		if *ov.Height <= 1.0 {
			h = int(float64(frame.Y)**ov.Height + 0.5)
		} else {
			h = int(*ov.Height)
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Point{X: w, Y: h}
}

func scaleImage(src image.Image, size image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	if size == src.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// rotateImage rotates clockwise by deg about the image center into an
// expanded bounding box; uncovered corners stay fully transparent.
func rotateImage(src *image.NRGBA, deg float64) *image.NRGBA {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	sw := float64(src.Bounds().Dx())
	sh := float64(src.Bounds().Dy())
	dw := math.Abs(sw*cos) + math.Abs(sh*sin)
	dh := math.Abs(sw*sin) + math.Abs(sh*cos)

	dst := image.NewNRGBA(image.Rect(0, 0, int(math.Ceil(dw)), int(math.Ceil(dh))))

	// Source-to-destination affine: translate the source center to the
	// origin, rotate, translate to the destination center.
	cx, cy := sw/2, sh/2
	dx, dy := dw/2, dh/2
	m := f64.Aff3{
		cos, -sin, dx - cx*cos + cy*sin,
		sin, cos, dy - cx*sin - cy*cos,
	}
	draw.ApproxBiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}

// applyOpacity multiplies every pixel's alpha by factor in place.
func applyOpacity(img *image.NRGBA, factor float64) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float64(img.Pix[i])*factor + 0.5)
	}
}
