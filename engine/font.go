package engine

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// loadFace loads a TTF/OTF face at the given pixel size. An empty,
// unreadable or unparseable font path falls back to the embedded Go
// Regular face rather than failing the job. This is the single code path
// for all fonts, configured and fallback alike.
func loadFace(path string, size float64) (font.Face, error) {
	data := goregular.TTF
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data = b
		}
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		// Custom font bytes were corrupt; retry with the built-in face.
		parsed, err = opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, err
		}
	}

	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
