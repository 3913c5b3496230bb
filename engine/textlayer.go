package engine

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// textLayout is the measured, wrapped form of a text overlay: glyph cells
// with baseline positions inside the panel, ready to paint in full (static
// text) or per character (animation).
type textLayout struct {
	style *TextStyle
	face  font.Face
	chars []charCell
	size  image.Point
}

// charCell is one drawable character with its baseline origin.
type charCell struct {
	r rune
	x fixed.Int26_6
	y fixed.Int26_6
}

// newTextLayout wraps and measures text against the frame width. Lines
// break greedily so the rendered width never exceeds max_width of the
// frame; a single word longer than the box is hard-broken. Alignment is
// applied per line within the wrap block.
func newTextLayout(ov *Overlay, frame image.Point) (*textLayout, error) {
	st := &ov.Style
	face, err := loadFace(st.Font, st.FontSize)
	if err != nil {
		return nil, err
	}

	limit := fixed.I(int(st.MaxWidth * float64(frame.X)))
	lines := wrapText(face, ov.Text, limit)

	widths := make([]fixed.Int26_6, len(lines))
	var blockW fixed.Int26_6
	for i, line := range lines {
		widths[i] = font.MeasureString(face, line)
		if widths[i] > blockW {
			blockW = widths[i]
		}
	}

	m := face.Metrics()
	lineHeight := m.Height.Ceil() + int(st.LineSpacing)
	blockH := (len(lines)-1)*lineHeight + m.Ascent.Ceil() + m.Descent.Ceil()

	tl := &textLayout{
		style: st,
		face:  face,
		size: image.Point{
			X: blockW.Ceil() + 2*st.Padding,
			Y: blockH + 2*st.Padding,
		},
	}

	for i, line := range lines {
		var x fixed.Int26_6
		switch st.Align {
		case AlignLeft:
			x = fixed.I(st.Padding)
		case AlignRight:
			x = fixed.I(st.Padding) + blockW - widths[i]
		default:
			x = fixed.I(st.Padding) + (blockW-widths[i])/2
		}
		y := fixed.I(st.Padding + m.Ascent.Ceil() + i*lineHeight)

		prev := rune(-1)
		for _, r := range line {
			if prev >= 0 {
				x += face.Kern(prev, r)
			}
			tl.chars = append(tl.chars, charCell{r: r, x: x, y: y})
			adv, ok := face.GlyphAdvance(r)
			if !ok {
				adv = font.MeasureString(face, string(r))
			}
			x += adv
			prev = r
		}
	}
	return tl, nil
}

// wrapText splits text into render lines. Explicit newlines are kept;
// within a paragraph words accumulate greedily until the next would exceed
// the limit. A lone overlong word breaks at the last rune that still fits.
func wrapText(face font.Face, text string, limit fixed.Int26_6) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if font.MeasureString(face, candidate) <= limit || current == "" {
				if current == "" && font.MeasureString(face, word) > limit {
					// Single word wider than the box: hard-break it.
					broken, rest := breakWord(face, word, limit)
					lines = append(lines, broken...)
					current = rest
					continue
				}
				current = candidate
				continue
			}
			lines = append(lines, current)
			if font.MeasureString(face, word) > limit {
				broken, rest := breakWord(face, word, limit)
				lines = append(lines, broken...)
				current = rest
			} else {
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// breakWord splits an overlong word into full lines plus a remainder that
// fits within the limit. Every line keeps at least one rune so progress is
// guaranteed even for an absurdly narrow box.
func breakWord(face font.Face, word string, limit fixed.Int26_6) (full []string, rest string) {
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		for end < len(runes) && font.MeasureString(face, string(runes[start:end+1])) <= limit {
			end++
		}
		if end == len(runes) {
			return full, string(runes[start:])
		}
		full = append(full, string(runes[start:end]))
		start = end
	}
	return full, ""
}

// renderPanel paints the background panel for the text block. A gradient
// takes precedence over a solid color; with neither, the panel stays
// transparent.
func (tl *textLayout) renderPanel() *image.NRGBA {
	panel := image.NewNRGBA(image.Rect(0, 0, tl.size.X, tl.size.Y))
	if tl.style.grad != nil {
		fillGradient(panel, *tl.style.grad)
	} else if tl.style.bg != nil {
		fillSolid(panel, *tl.style.bg)
	}
	return panel
}

// renderStatic paints panel, stroke and fill for the entire block.
func (tl *textLayout) renderStatic() *image.NRGBA {
	dst := tl.renderPanel()
	for _, cell := range tl.chars {
		tl.drawChar(dst, cell, 1.0)
	}
	return dst
}

// drawChar paints one character at the given opacity: an outline pass in
// the stroke color beneath a fill pass.
func (tl *textLayout) drawChar(dst *image.NRGBA, cell charCell, alpha float64) {
	st := tl.style
	if st.StrokeWidth > 0 {
		src := image.NewUniform(scaleAlpha(st.stroke, alpha))
		w := st.StrokeWidth
		for dy := -w; dy <= w; dy++ {
			for dx := -w; dx <= w; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if dx*dx+dy*dy > w*w {
					continue
				}
				tl.drawRune(dst, cell, src, fixed.I(dx), fixed.I(dy))
			}
		}
	}
	tl.drawRune(dst, cell, image.NewUniform(scaleAlpha(st.fill, alpha)), 0, 0)
}

func (tl *textLayout) drawRune(dst *image.NRGBA, cell charCell, src image.Image, dx, dy fixed.Int26_6) {
	d := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: tl.face,
		Dot:  fixed.Point26_6{X: cell.x + dx, Y: cell.y + dy},
	}
	d.DrawString(string(cell.r))
}

func scaleAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	if alpha >= 1 {
		return c
	}
	c.A = uint8(float64(c.A)*alpha + 0.5)
	return c
}

// charSchedule returns each character's fade-in start time relative to the
// overlay's start: character i begins at i*delay.
func charSchedule(n int, delay float64) []float64 {
	starts := make([]float64, n)
	for i := range starts {
		starts[i] = float64(i) * delay
	}
	return starts
}

// textAnimation samples a precomputed per-character reveal schedule into a
// raster for a given timestamp. The schedule is immutable; only the
// scratch buffer is rewritten per frame, which keeps the compositor
// stateless with respect to animation.
type textAnimation struct {
	layout     *textLayout
	panel      *image.NRGBA
	scratch    *image.NRGBA
	start      float64
	fadeStarts []float64
	fadeDur    float64
}

func newTextAnimation(tl *textLayout, start float64) *textAnimation {
	return &textAnimation{
		layout:     tl,
		panel:      tl.renderPanel(),
		scratch:    image.NewNRGBA(image.Rect(0, 0, tl.size.X, tl.size.Y)),
		start:      start,
		fadeStarts: charSchedule(len(tl.chars), tl.style.CharDelay),
		fadeDur:    tl.style.CharFadeDuration,
	}
}

// frameAt renders the animated text block at timestamp t. Each character's
// opacity ramps linearly from 0 to 1 over the fade duration; characters
// whose fade has not begun are not drawn at all.
func (a *textAnimation) frameAt(t float64) *image.NRGBA {
	copy(a.scratch.Pix, a.panel.Pix)
	rel := t - a.start
	for i, cell := range a.layout.chars {
		f := 1.0
		if a.fadeDur > 0 {
			f = (rel - a.fadeStarts[i]) / a.fadeDur
		} else if rel < a.fadeStarts[i] {
			f = 0
		}
		if f <= 0 {
			continue
		}
		if f > 1 {
			f = 1
		}
		a.layout.drawChar(a.scratch, cell, f)
	}
	return a.scratch
}

// renderTextLayer produces the compositing-ready form of a text overlay:
// either a fully painted static panel or an animation schedule sampled per
// output frame.
func renderTextLayer(ov *Overlay, frame image.Point) (static *image.NRGBA, anim *textAnimation, size image.Point, err error) {
	tl, err := newTextLayout(ov, frame)
	if err != nil {
		return nil, nil, image.Point{}, err
	}
	if ov.Style.CharAnimation {
		return nil, newTextAnimation(tl, ov.StartTime), tl.size, nil
	}
	return tl.renderStatic(), nil, tl.size, nil
}
