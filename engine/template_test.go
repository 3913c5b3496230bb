package engine

import "testing"

func TestExpandString(t *testing.T) {
	vars := map[string]string{"name": "Ada", "team": "Blue"}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no tokens", "plain text", "plain text"},
		{"single token", "Hello ${name}", "Hello Ada"},
		{"multiple tokens", "${name} of team ${team}", "Ada of team Blue"},
		{"adjacent tokens", "${name}${team}", "AdaBlue"},
		{"unknown token kept verbatim", "Hi ${missing}", "Hi ${missing}"},
		{"malformed token kept verbatim", "cost is ${5}", "cost is ${5}"},
		{"unterminated token kept verbatim", "oops ${name", "oops ${name"},
		{"empty string", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := expandString(c.in, vars)
			if got != c.want {
				t.Fatalf("expandString(%q) = %q; want %q", c.in, got, c.want)
			}
		})
	}
}

func TestExpandStringNoVars(t *testing.T) {
	in := "untouched ${name}"
	if got := expandString(in, nil); got != in {
		t.Fatalf("expandString with nil vars = %q; want %q", got, in)
	}
}

func TestApplyTemplatesWalksAllStringFields(t *testing.T) {
	cfg := &OverlayConfig{
		Overlays: []Overlay{
			{
				Type:    OverlayImage,
				BgColor: "${panel}",
				Position: PositionSpec{
					Kind:    PositionKeyword,
					Keyword: "${anchor}",
				},
			},
			{
				Type: OverlayText,
				Text: "Welcome ${name}",
				Style: TextStyle{
					Color:       "${fill}",
					StrokeColor: "${edge}",
					BgColor:     "${panel}",
					Align:       "${align}",
					BgGradient: &GradientSpec{
						Start:     "${gradA}",
						End:       "${gradB}",
						Direction: "${dir}",
					},
				},
			},
		},
	}

	vars := map[string]string{
		"panel":  "#00000080",
		"anchor": "bottom-center",
		"name":   "Ada",
		"fill":   "#FFFFFF",
		"edge":   "#000000",
		"align":  "left",
		"gradA":  "#FF0000",
		"gradB":  "#0000FF",
		"dir":    "horizontal",
	}
	applyTemplates(cfg, vars)

	img := cfg.Overlays[0]
	if img.BgColor != "#00000080" {
		t.Fatalf("image bg_color = %q; want %q", img.BgColor, "#00000080")
	}
	if img.Position.Keyword != "bottom-center" {
		t.Fatalf("position keyword = %q; want %q", img.Position.Keyword, "bottom-center")
	}

	txt := cfg.Overlays[1]
	if txt.Text != "Welcome Ada" {
		t.Fatalf("text = %q; want %q", txt.Text, "Welcome Ada")
	}
	st := txt.Style
	if st.Color != "#FFFFFF" || st.StrokeColor != "#000000" || st.BgColor != "#00000080" || st.Align != "left" {
		t.Fatalf("style fields not substituted: %+v", st)
	}
	if st.BgGradient.Start != "#FF0000" || st.BgGradient.End != "#0000FF" || st.BgGradient.Direction != "horizontal" {
		t.Fatalf("gradient fields not substituted: %+v", *st.BgGradient)
	}
}
