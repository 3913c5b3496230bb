package engine

import (
	"encoding/json"
	"image"
)

// PositionKind tags the three addressing modes a position may use.
type PositionKind int

const (
	// PositionKeyword anchors the layer to a named frame region.
	PositionKeyword PositionKind = iota
	// PositionRatio places the layer's anchor fractionally across the
	// frame's free space, so 1.0 is flush with the far edge.
	PositionRatio
	// PositionAbsolute places the layer's top-left at exact pixels,
	// deliberately unclamped.
	PositionAbsolute
)

// edgeMargin is the inset applied by edge-anchored keywords.
const edgeMargin = 24

// PositionSpec is a tagged variant over a keyword, an absolute pixel pair
// or a normalized ratio pair. The zero value means "center".
type PositionSpec struct {
	Kind    PositionKind
	Keyword string
	X, Y    float64
}

type positionPair struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// UnmarshalJSON accepts either a keyword string or an {x, y} object. A pair
// with both components in [0,1] is a ratio spec, anything else absolute
// pixels; this mirrors the document convention that values at or below 1.0
// are frame fractions.
func (p *PositionSpec) UnmarshalJSON(data []byte) error {
	var kw string
	if err := json.Unmarshal(data, &kw); err == nil {
		*p = PositionSpec{Kind: PositionKeyword, Keyword: kw}
		return nil
	}

	var pair positionPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair.X == nil || pair.Y == nil {
		return configErrorf("position", "pair must contain both x and y")
	}

	spec := PositionSpec{Kind: PositionAbsolute, X: *pair.X, Y: *pair.Y}
	if spec.X >= 0 && spec.X <= 1 && spec.Y >= 0 && spec.Y <= 1 {
		spec.Kind = PositionRatio
	}
	*p = spec
	return nil
}

// keywordAnchors maps position keywords to fractional (x, y) anchors.
// Bare "top"/"bottom" center horizontally; bare "left"/"right" center
// vertically.
var keywordAnchors = map[string][2]float64{
	"center":        {0.5, 0.5},
	"top":           {0.5, 0},
	"bottom":        {0.5, 1},
	"left":          {0, 0.5},
	"right":         {1, 0.5},
	"top-left":      {0, 0},
	"top-center":    {0.5, 0},
	"top-right":     {1, 0},
	"center-left":   {0, 0.5},
	"center-right":  {1, 0.5},
	"bottom-left":   {0, 1},
	"bottom-center": {0.5, 1},
	"bottom-right":  {1, 1},
}

func (p *PositionSpec) validate(field string) error {
	if p.Kind != PositionKeyword {
		return nil
	}
	if p.Keyword == "" {
		p.Keyword = "center"
	}
	if _, ok := keywordAnchors[p.Keyword]; !ok {
		return configErrorf(field, "unknown position keyword %q", p.Keyword)
	}
	return nil
}

// resolvePosition maps a position spec plus a layer's rendered size to the
// layer's top-left pixel within the frame.
//
// Ratio coordinates scale across (frame - layer), so a ratio component of
// 1.0 puts the layer's far edge flush with the frame edge and a ratio spec
// can never spill outside the frame. Absolute pixels are not clamped.
func resolvePosition(spec PositionSpec, layer, frame image.Point) image.Point {
	switch spec.Kind {
	case PositionAbsolute:
		return image.Point{X: int(spec.X), Y: int(spec.Y)}

	case PositionRatio:
		return image.Point{
			X: int(spec.X*float64(frame.X-layer.X) + 0.5),
			Y: int(spec.Y*float64(frame.Y-layer.Y) + 0.5),
		}

	default:
		anchor := keywordAnchors[spec.Keyword]
		x := int(anchor[0]*float64(frame.X-layer.X) + 0.5)
		y := int(anchor[1]*float64(frame.Y-layer.Y) + 0.5)
		// Edge-anchored keywords keep a small margin from the frame edge.
		if anchor[0] == 0 {
			x += edgeMargin
		} else if anchor[0] == 1 {
			x -= edgeMargin
		}
		if anchor[1] == 0 {
			y += edgeMargin
		} else if anchor[1] == 1 {
			y -= edgeMargin
		}
		return image.Point{X: x, Y: y}
	}
}

// resolveOverlayPosition resolves where an overlay's rendered layer sits.
// An image overlay with a background canvas fills the whole frame with the
// source image centered on it, so its position spec is ignored and the
// canvas pins to the origin.
func resolveOverlayPosition(ov *Overlay, layer, frame image.Point) image.Point {
	if ov.Type == OverlayImage && ov.bgColor != nil {
		return image.Point{}
	}
	return resolvePosition(ov.Position, layer, frame)
}
