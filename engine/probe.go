package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// videoMeta is the background video's probed geometry and timing. The
// output inherits all of it: resolution, frame rate and duration.
type videoMeta struct {
	Width       int
	Height      int
	FPS         float64
	FPSRational string
	Duration    float64
	HasAudio    bool
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// probeVideo reads the background's stream layout via ffprobe. An
// unreadable background is fatal to the job.
func probeVideo(path string) (videoMeta, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return videoMeta{}, &DecodeError{Path: path, Err: err}
	}
	return parseProbe(path, raw)
}

// parseProbe extracts the metadata the compositor needs from raw ffprobe
// JSON. A background without geometry, frame rate or a positive duration
// cannot drive the frame loop and is rejected.
func parseProbe(path, raw string) (videoMeta, error) {
	var probed probeOutput
	if err := json.Unmarshal([]byte(raw), &probed); err != nil {
		return videoMeta{}, &DecodeError{Path: path, Err: fmt.Errorf("parse probe output: %w", err)}
	}

	var meta videoMeta
	found := false
	for _, s := range probed.Streams {
		switch s.CodecType {
		case "video":
			if found {
				continue
			}
			found = true
			meta.Width = s.Width
			meta.Height = s.Height
			meta.FPSRational = s.RFrameRate
			meta.FPS = parseRate(s.RFrameRate)
			if meta.FPS == 0 {
				meta.FPSRational = s.AvgFrameRate
				meta.FPS = parseRate(s.AvgFrameRate)
			}
			if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
				meta.Duration = d
			}
		case "audio":
			meta.HasAudio = true
		}
	}

	if meta.Duration == 0 {
		if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			meta.Duration = d
		}
	}

	if !found || meta.Width <= 0 || meta.Height <= 0 || meta.FPS <= 0 || meta.Duration <= 0 {
		return videoMeta{}, &DecodeError{Path: path, Err: fmt.Errorf("no usable video stream")}
	}
	return meta, nil
}

// parseRate parses an ffprobe frame-rate fraction like "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
