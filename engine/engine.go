// Package engine composites timed image and text overlays onto a
// background video. It consumes already-resolved local media plus a
// declarative JSON overlay document and produces a single muxed output
// file along with a per-overlay outcome report. Fetching media, choosing
// which assets belong to a job and persisting results are the caller's
// concern.
package engine

import (
	"context"
	"errors"
	"image"
	"runtime"
	"sync"
)

// Skip reasons recorded in a CompositionResult.
const (
	SkipNoMoreImages  = "no_more_images"
	SkipDecodeError   = "decode_error"
	SkipRenderError   = "render_error"
	SkipAfterVideoEnd = "after_video_end"
)

// Job is one compositing request. All paths are local; the engine performs
// no network I/O. Image overlays consume ImagePaths in configuration
// order.
type Job struct {
	BackgroundPath string
	ImagePaths     []string
	ConfigDocument string
	TemplateVars   map[string]string
	OutputPath     string
}

// OverlayOutcome reports what happened to a single overlay.
type OverlayOutcome struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// CompositionResult is the finished job: the output path plus each
// overlay's outcome in configuration order.
type CompositionResult struct {
	OutputPath string           `json:"output_path"`
	Overlays   []OverlayOutcome `json:"overlays"`
}

// Composite runs one full compositing job: parse and validate the overlay
// document, render every layer, then stream the background through the
// compositor into OutputPath. Overlay-level problems degrade to skips in
// the result; config, background-decode and encode problems are returned
// as typed errors and leave no partial output behind.
func Composite(ctx context.Context, job Job) (*CompositionResult, error) {
	cfg, err := ParseConfig(job.ConfigDocument, job.TemplateVars)
	if err != nil {
		return nil, err
	}

	meta, err := probeVideo(job.BackgroundPath)
	if err != nil {
		return nil, err
	}
	frame := image.Point{X: meta.Width, Y: meta.Height}

	plans := planOverlays(cfg, job.ImagePaths, meta.Duration)
	layers := renderLayers(ctx, plans, frame, meta.Duration)

	composited := make([]*renderedLayer, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			composited = append(composited, l)
		}
	}

	if err := compositeVideo(ctx, job.BackgroundPath, meta, composited, job.OutputPath); err != nil {
		return nil, err
	}

	result := &CompositionResult{OutputPath: job.OutputPath}
	for i, p := range plans {
		out := OverlayOutcome{Index: i, Type: p.overlay.Type}
		if p.skip == "" && layers[i] != nil {
			out.Applied = true
		} else {
			out.Reason = p.skip
		}
		result.Overlays = append(result.Overlays, out)
	}
	return result, nil
}

// overlayPlan pairs an overlay with its assigned source image (for image
// overlays) or the reason it will be skipped.
type overlayPlan struct {
	overlay   *Overlay
	imagePath string
	skip      string
}

// planOverlays assigns source images to image overlays in configuration
// order and decides up front which overlays can never render. Once images
// run out, remaining image overlays are skipped rather than aborting the
// job; text overlays are unaffected. Overlays starting at or past the
// background's end can never be visible and are skipped the same way.
func planOverlays(cfg *OverlayConfig, imagePaths []string, videoDuration float64) []overlayPlan {
	plans := make([]overlayPlan, len(cfg.Overlays))
	next := 0
	for i := range cfg.Overlays {
		ov := &cfg.Overlays[i]
		p := overlayPlan{overlay: ov}
		if ov.Type == OverlayImage {
			if next < len(imagePaths) {
				p.imagePath = imagePaths[next]
				next++
			} else {
				p.skip = SkipNoMoreImages
			}
		}
		if p.skip == "" && ov.StartTime >= videoDuration {
			p.skip = SkipAfterVideoEnd
		}
		plans[i] = p
	}
	return plans
}

// renderLayers renders all plannable overlays concurrently, bounded by the
// CPU count; overlays have no data dependency on each other. Results keep
// their configuration index so paint order survives the fan-out. A failed
// render marks its plan skipped instead of failing the job.
func renderLayers(ctx context.Context, plans []overlayPlan, frame image.Point, videoDuration float64) []*renderedLayer {
	layers := make([]*renderedLayer, len(plans))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, runtime.NumCPU())
	for i := range plans {
		if plans[i].skip != "" {
			continue
		}
		if ctx.Err() != nil {
			plans[i].skip = SkipRenderError
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			layer, err := renderLayer(&plans[idx], idx, frame, videoDuration)
			if err != nil {
				var decodeErr *DecodeError
				if errors.As(err, &decodeErr) {
					plans[idx].skip = SkipDecodeError
				} else {
					plans[idx].skip = SkipRenderError
				}
				return
			}
			layers[idx] = layer
		}(i)
	}
	wg.Wait()
	return layers
}

func renderLayer(p *overlayPlan, idx int, frame image.Point, videoDuration float64) (*renderedLayer, error) {
	ov := p.overlay
	layer := &renderedLayer{
		index: idx,
		start: ov.StartTime,
		end:   ov.StartTime + ov.Duration,
	}
	// Visibility clips to the background; overlays never extend the output.
	if layer.end > videoDuration {
		layer.end = videoDuration
	}

	switch ov.Type {
	case OverlayImage:
		raster, err := renderImageLayer(ov, p.imagePath, frame)
		if err != nil {
			return nil, err
		}
		layer.static = raster
		layer.pos = resolveOverlayPosition(ov, raster.Bounds().Size(), frame)

	case OverlayText:
		static, anim, size, err := renderTextLayer(ov, frame)
		if err != nil {
			return nil, err
		}
		layer.static = static
		layer.anim = anim
		layer.pos = resolveOverlayPosition(ov, size, frame)
	}
	return layer, nil
}
