package engine

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Overlay type tags.
const (
	OverlayImage = "image"
	OverlayText  = "text"
)

// Gradient directions.
const (
	DirectionVertical   = "vertical"
	DirectionHorizontal = "horizontal"
)

// Text alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Defaults applied during validation.
const (
	DefaultFontSize         = 48.0
	DefaultTextColor        = "#FFFFFF"
	DefaultMaxWidth         = 0.85
	DefaultCharFadeDuration = 0.15
	DefaultCharDelay        = 0.05
)

// OverlayConfig is the parsed, validated overlay document. Array order is
// paint order: the first overlay is the bottommost above the background.
// The config is immutable once parsed.
type OverlayConfig struct {
	Overlays []Overlay `json:"overlays"`
}

// Overlay is one timed visual element. Type selects which of the image or
// text fields are meaningful.
type Overlay struct {
	Type      string       `json:"type"`
	StartTime float64      `json:"start_time"`
	Duration  float64      `json:"duration"`
	Position  PositionSpec `json:"position"`

	// Image overlay fields. Width/Height values at or below 1.0 are frame
	// fractions, larger values are absolute pixels; either supersedes Scale.
	Scale    float64  `json:"scale,omitempty"`
	Rotation float64  `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	BgColor  string   `json:"bg_color,omitempty"`

	// Text overlay fields.
	Text  string    `json:"text,omitempty"`
	Style TextStyle `json:"text_style,omitempty"`

	bgColor *color.NRGBA // resolved BgColor, nil when unset
}

// GradientSpec is the raw two-stop gradient from the document.
type GradientSpec struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Direction string `json:"direction,omitempty"`
}

// TextStyle describes how a text overlay is laid out and painted.
type TextStyle struct {
	Font             string        `json:"font,omitempty"`
	FontSize         float64       `json:"font_size,omitempty"`
	Color            string        `json:"color,omitempty"`
	StrokeColor      string        `json:"stroke_color,omitempty"`
	StrokeWidth      int           `json:"stroke_width,omitempty"`
	BgColor          string        `json:"bg_color,omitempty"`
	BgGradient       *GradientSpec `json:"bg_gradient,omitempty"`
	Padding          int           `json:"padding,omitempty"`
	Align            string        `json:"align,omitempty"`
	MaxWidth         float64       `json:"max_width,omitempty"`
	LineSpacing      float64       `json:"line_spacing,omitempty"`
	CharAnimation    bool          `json:"char_animation,omitempty"`
	CharFadeDuration float64       `json:"char_fade_duration,omitempty"`
	CharDelay        float64       `json:"char_delay,omitempty"`

	fill   color.NRGBA
	stroke color.NRGBA
	bg     *color.NRGBA
	grad   *gradient
}

// ParseConfig parses and validates an overlay configuration document,
// substituting template variables into every string-valued field first so
// the same resolved strings are reused by all layers. Unresolved ${tokens}
// are left verbatim; partial data never blocks reel generation.
func ParseConfig(doc string, vars map[string]string) (*OverlayConfig, error) {
	var cfg OverlayConfig
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("parse document: %v", err)}
	}

	applyTemplates(&cfg, vars)

	for i := range cfg.Overlays {
		if err := validateOverlay(&cfg.Overlays[i], i); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func validateOverlay(ov *Overlay, idx int) error {
	field := func(name string) string { return fmt.Sprintf("overlays[%d].%s", idx, name) }

	switch ov.Type {
	case OverlayImage, OverlayText:
	case "":
		return configErrorf(field("type"), "missing required field")
	default:
		return configErrorf(field("type"), "unknown overlay type %q", ov.Type)
	}

	if ov.StartTime < 0 {
		return configErrorf(field("start_time"), "must be >= 0, got %g", ov.StartTime)
	}
	if ov.Duration <= 0 {
		return configErrorf(field("duration"), "must be > 0, got %g", ov.Duration)
	}
	if err := ov.Position.validate(field("position")); err != nil {
		return err
	}

	switch ov.Type {
	case OverlayImage:
		return validateImageOverlay(ov, field)
	case OverlayText:
		return validateTextOverlay(ov, field)
	}
	return nil
}

func validateImageOverlay(ov *Overlay, field func(string) string) error {
	if ov.Scale == 0 {
		ov.Scale = 1.0
	}
	if ov.Scale < 0 {
		return configErrorf(field("scale"), "must be > 0, got %g", ov.Scale)
	}
	if ov.Opacity == nil {
		one := 1.0
		ov.Opacity = &one
	}
	if *ov.Opacity < 0 || *ov.Opacity > 1 {
		return configErrorf(field("opacity"), "must be in [0,1], got %g", *ov.Opacity)
	}
	if ov.Width != nil && *ov.Width <= 0 {
		return configErrorf(field("width"), "must be > 0, got %g", *ov.Width)
	}
	if ov.Height != nil && *ov.Height <= 0 {
		return configErrorf(field("height"), "must be > 0, got %g", *ov.Height)
	}
	if ov.BgColor != "" {
		c, err := parseHexColor(ov.BgColor)
		if err != nil {
			return configErrorf(field("bg_color"), "malformed color %q", ov.BgColor)
		}
		ov.bgColor = &c
	}
	return nil
}

func validateTextOverlay(ov *Overlay, field func(string) string) error {
	if ov.Text == "" {
		return configErrorf(field("text"), "missing required field")
	}

	st := &ov.Style
	if st.FontSize == 0 {
		st.FontSize = DefaultFontSize
	}
	if st.FontSize < 0 {
		return configErrorf(field("text_style.font_size"), "must be > 0, got %g", st.FontSize)
	}
	if st.Color == "" {
		st.Color = DefaultTextColor
	}
	var err error
	if st.fill, err = parseHexColor(st.Color); err != nil {
		return configErrorf(field("text_style.color"), "malformed color %q", st.Color)
	}
	if st.StrokeWidth < 0 {
		return configErrorf(field("text_style.stroke_width"), "must be >= 0, got %d", st.StrokeWidth)
	}
	if st.StrokeColor != "" {
		if st.stroke, err = parseHexColor(st.StrokeColor); err != nil {
			return configErrorf(field("text_style.stroke_color"), "malformed color %q", st.StrokeColor)
		}
	}
	if st.Padding < 0 {
		return configErrorf(field("text_style.padding"), "must be >= 0, got %d", st.Padding)
	}

	switch st.Align {
	case "":
		st.Align = AlignCenter
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return configErrorf(field("text_style.align"), "unknown alignment %q", st.Align)
	}

	if st.MaxWidth == 0 {
		st.MaxWidth = DefaultMaxWidth
	}
	if st.MaxWidth < 0 || st.MaxWidth > 1 {
		return configErrorf(field("text_style.max_width"), "must be in (0,1], got %g", st.MaxWidth)
	}

	if st.CharFadeDuration == 0 {
		st.CharFadeDuration = DefaultCharFadeDuration
	}
	if st.CharFadeDuration < 0 {
		return configErrorf(field("text_style.char_fade_duration"), "must be > 0, got %g", st.CharFadeDuration)
	}
	if st.CharDelay == 0 {
		st.CharDelay = DefaultCharDelay
	}
	if st.CharDelay < 0 {
		return configErrorf(field("text_style.char_delay"), "must be >= 0, got %g", st.CharDelay)
	}

	if st.BgColor != "" {
		c, err := parseHexColor(st.BgColor)
		if err != nil {
			return configErrorf(field("text_style.bg_color"), "malformed color %q", st.BgColor)
		}
		st.bg = &c
	}
	// Gradient takes priority over a solid background when both are present.
	if st.BgGradient != nil {
		g := gradient{Direction: st.BgGradient.Direction}
		if g.Direction == "" {
			g.Direction = DirectionVertical
		}
		if g.Direction != DirectionVertical && g.Direction != DirectionHorizontal {
			return configErrorf(field("text_style.bg_gradient.direction"), "unknown direction %q", g.Direction)
		}
		if g.Start, err = parseHexColor(st.BgGradient.Start); err != nil {
			return configErrorf(field("text_style.bg_gradient.start"), "malformed color %q", st.BgGradient.Start)
		}
		if g.End, err = parseHexColor(st.BgGradient.End); err != nil {
			return configErrorf(field("text_style.bg_gradient.end"), "malformed color %q", st.BgGradient.End)
		}
		st.grad = &g
	}
	return nil
}
