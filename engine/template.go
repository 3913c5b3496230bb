package engine

import "regexp"

var templateToken = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandString replaces every ${name} token with its TemplateVars entry.
// Unknown names are left verbatim rather than erased or rejected, so a
// reel still renders when some participant data is missing.
func expandString(s string, vars map[string]string) string {
	if len(vars) == 0 || s == "" {
		return s
	}
	return templateToken.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[2 : len(tok)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// applyTemplates walks every string-valued field of the parsed document and
// substitutes template variables in place. Substitution runs once, before
// validation and rendering, so layers referencing the same variable always
// see the same resolved string.
func applyTemplates(cfg *OverlayConfig, vars map[string]string) {
	if len(vars) == 0 {
		return
	}
	for i := range cfg.Overlays {
		ov := &cfg.Overlays[i]
		ov.BgColor = expandString(ov.BgColor, vars)
		ov.Text = expandString(ov.Text, vars)
		ov.Position.Keyword = expandString(ov.Position.Keyword, vars)

		st := &ov.Style
		st.Font = expandString(st.Font, vars)
		st.Color = expandString(st.Color, vars)
		st.StrokeColor = expandString(st.StrokeColor, vars)
		st.BgColor = expandString(st.BgColor, vars)
		st.Align = expandString(st.Align, vars)
		if st.BgGradient != nil {
			g := *st.BgGradient
			g.Start = expandString(g.Start, vars)
			g.End = expandString(g.End, vars)
			g.Direction = expandString(g.Direction, vars)
			st.BgGradient = &g
		}
	}
}
