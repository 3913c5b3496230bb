package engine

import (
	"errors"
	"math"
	"testing"
)

func TestParseProbe(t *testing.T) {
	t.Run("video and audio", func(t *testing.T) {
		raw := `{
			"streams": [
				{"codec_type": "video", "width": 1080, "height": 1920, "r_frame_rate": "30000/1001", "duration": "12.5"},
				{"codec_type": "audio"}
			],
			"format": {"duration": "12.5"}
		}`
		meta, err := parseProbe("bg.mp4", raw)
		if err != nil {
			t.Fatalf("parseProbe: %v", err)
		}
		if meta.Width != 1080 || meta.Height != 1920 {
			t.Fatalf("geometry = %dx%d; want 1080x1920", meta.Width, meta.Height)
		}
		if math.Abs(meta.FPS-29.97002997) > 1e-6 {
			t.Fatalf("fps = %g; want about 29.97", meta.FPS)
		}
		if meta.FPSRational != "30000/1001" {
			t.Fatalf("fps rational = %q; want 30000/1001", meta.FPSRational)
		}
		if meta.Duration != 12.5 {
			t.Fatalf("duration = %g; want 12.5", meta.Duration)
		}
		if !meta.HasAudio {
			t.Fatal("audio stream not detected")
		}
	})

	t.Run("falls back to avg frame rate and format duration", func(t *testing.T) {
		raw := `{
			"streams": [{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "0/0", "avg_frame_rate": "25/1"}],
			"format": {"duration": "8.0"}
		}`
		meta, err := parseProbe("bg.mp4", raw)
		if err != nil {
			t.Fatalf("parseProbe: %v", err)
		}
		if meta.FPS != 25 || meta.FPSRational != "25/1" {
			t.Fatalf("fps = %g (%q); want 25 from avg_frame_rate", meta.FPS, meta.FPSRational)
		}
		if meta.Duration != 8.0 {
			t.Fatalf("duration = %g; want 8 from format", meta.Duration)
		}
		if meta.HasAudio {
			t.Fatal("audio detected on a silent input")
		}
	})

	t.Run("rejects unusable inputs", func(t *testing.T) {
		cases := []struct {
			name string
			raw  string
		}{
			{"not json", `{"streams": [`},
			{"no video stream", `{"streams": [{"codec_type": "audio"}], "format": {"duration": "5"}}`},
			{"zero geometry", `{"streams": [{"codec_type": "video", "width": 0, "height": 360, "r_frame_rate": "30/1", "duration": "5"}]}`},
			{"no frame rate", `{"streams": [{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "0/0", "duration": "5"}]}`},
			{"no duration anywhere", `{"streams": [{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "30/1"}], "format": {}}`},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				_, err := parseProbe("bg.mp4", c.raw)
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("error = %v; want *DecodeError", err)
				}
			})
		}
	})
}
