package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	doc := `{
		"overlays": [
			{"type": "image", "start_time": 0, "duration": 2},
			{"type": "text", "start_time": 1, "duration": 3, "text": "hello"}
		]
	}`

	cfg, err := ParseConfig(doc, nil)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if len(cfg.Overlays) != 2 {
		t.Fatalf("got %d overlays; want 2", len(cfg.Overlays))
	}

	img := cfg.Overlays[0]
	if img.Scale != 1.0 {
		t.Fatalf("default scale = %g; want 1", img.Scale)
	}
	if img.Opacity == nil || *img.Opacity != 1.0 {
		t.Fatalf("default opacity = %v; want 1", img.Opacity)
	}
	if img.Position.Kind != PositionKeyword || img.Position.Keyword != "center" {
		t.Fatalf("default position = %+v; want center keyword", img.Position)
	}

	st := cfg.Overlays[1].Style
	if st.FontSize != DefaultFontSize {
		t.Fatalf("default font_size = %g; want %g", st.FontSize, DefaultFontSize)
	}
	if st.Color != DefaultTextColor {
		t.Fatalf("default color = %q; want %q", st.Color, DefaultTextColor)
	}
	if st.Align != AlignCenter {
		t.Fatalf("default align = %q; want %q", st.Align, AlignCenter)
	}
	if st.MaxWidth != DefaultMaxWidth {
		t.Fatalf("default max_width = %g; want %g", st.MaxWidth, DefaultMaxWidth)
	}
	if st.CharFadeDuration != DefaultCharFadeDuration {
		t.Fatalf("default char_fade_duration = %g; want %g", st.CharFadeDuration, DefaultCharFadeDuration)
	}
	if st.CharDelay != DefaultCharDelay {
		t.Fatalf("default char_delay = %g; want %g", st.CharDelay, DefaultCharDelay)
	}
}

func TestParseConfigTemplateVars(t *testing.T) {
	doc := `{"overlays": [{"type": "text", "duration": 2, "text": "Hi ${name}", "text_style": {"color": "${fill}"}}]}`
	cfg, err := ParseConfig(doc, map[string]string{"name": "Ada", "fill": "#112233"})
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	if got := cfg.Overlays[0].Text; got != "Hi Ada" {
		t.Fatalf("text = %q; want %q", got, "Hi Ada")
	}
	if got := cfg.Overlays[0].Style.Color; got != "#112233" {
		t.Fatalf("color = %q; want %q", got, "#112233")
	}
}

func TestParseConfigGradientBeatsSolidBackground(t *testing.T) {
	doc := `{"overlays": [{
		"type": "text", "duration": 2, "text": "x",
		"text_style": {
			"bg_color": "#00000080",
			"bg_gradient": {"start": "#FF0000", "end": "#0000FF"}
		}
	}]}`
	cfg, err := ParseConfig(doc, nil)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}
	st := cfg.Overlays[0].Style
	if st.grad == nil {
		t.Fatal("gradient not resolved")
	}
	if st.grad.Direction != DirectionVertical {
		t.Fatalf("gradient direction = %q; want default %q", st.grad.Direction, DirectionVertical)
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"not json", `{"overlays": [`, ""},
		{"missing type", `{"overlays": [{"duration": 2}]}`, "overlays[0].type"},
		{"unknown type", `{"overlays": [{"type": "video", "duration": 2}]}`, "overlays[0].type"},
		{"negative start_time", `{"overlays": [{"type": "text", "start_time": -1, "duration": 2, "text": "x"}]}`, "overlays[0].start_time"},
		{"zero duration", `{"overlays": [{"type": "text", "duration": 0, "text": "x"}]}`, "overlays[0].duration"},
		{"missing text", `{"overlays": [{"type": "text", "duration": 2}]}`, "overlays[0].text"},
		{"opacity out of range", `{"overlays": [{"type": "image", "duration": 2, "opacity": 1.5}]}`, "overlays[0].opacity"},
		{"negative scale", `{"overlays": [{"type": "image", "duration": 2, "scale": -2}]}`, "overlays[0].scale"},
		{"zero width", `{"overlays": [{"type": "image", "duration": 2, "width": 0}]}`, "overlays[0].width"},
		{"bad image bg_color", `{"overlays": [{"type": "image", "duration": 2, "bg_color": "red"}]}`, "overlays[0].bg_color"},
		{"unknown keyword", `{"overlays": [{"type": "image", "duration": 2, "position": "middle"}]}`, "overlays[0].position"},
		{"bad text color", `{"overlays": [{"type": "text", "duration": 2, "text": "x", "text_style": {"color": "#12"}}]}`, "overlays[0].text_style.color"},
		{"unknown align", `{"overlays": [{"type": "text", "duration": 2, "text": "x", "text_style": {"align": "justify"}}]}`, "overlays[0].text_style.align"},
		{"max_width out of range", `{"overlays": [{"type": "text", "duration": 2, "text": "x", "text_style": {"max_width": 1.5}}]}`, "overlays[0].text_style.max_width"},
		{"bad gradient direction", `{"overlays": [{"type": "text", "duration": 2, "text": "x", "text_style": {"bg_gradient": {"start": "#000000", "end": "#FFFFFF", "direction": "diagonal"}}}]}`, "overlays[0].text_style.bg_gradient.direction"},
		{"position pair missing y", `{"overlays": [{"type": "image", "duration": 2, "position": {"x": 0.5}}]}`, ""},
		{"second overlay indexed", `{"overlays": [{"type": "text", "duration": 2, "text": "x"}, {"type": "text", "duration": 0, "text": "y"}]}`, "overlays[1].duration"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseConfig(c.doc, nil)
			if err == nil {
				t.Fatal("ParseConfig succeeded; want error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type %T; want *ConfigError", err)
			}
			if c.wantField != "" && cfgErr.Field != c.wantField {
				t.Fatalf("error field %q; want %q", cfgErr.Field, c.wantField)
			}
		})
	}
}

func TestConfigErrorMessageContainsField(t *testing.T) {
	err := configErrorf("overlays[3].duration", "must be > 0, got %g", -1.0)
	if !strings.Contains(err.Error(), "overlays[3].duration") {
		t.Fatalf("error message %q missing field path", err.Error())
	}
}
