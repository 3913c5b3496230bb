package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Output encoding settings. The container family follows the background
// input; audio is stream-copied so the original track survives untouched.
const (
	encodeCodec  = "libx264"
	encodePixFmt = "yuv420p"
	encodePreset = "medium"
)

// compositeVideo streams the background through a raw-RGBA decode pipe,
// paints every active layer onto each frame in paint order, and feeds the
// result to an encode pipe that muxes the background's audio into the
// output file. The loop is serial: container write order fixes frame
// order, and cancellation is only honored between frames so a partial
// frame never reaches the encoder.
func compositeVideo(ctx context.Context, bgPath string, meta videoMeta, layers []*renderedLayer, outPath string) error {
	decR, decW := io.Pipe()
	go func() {
		err := ffmpeg.Input(bgPath).
			Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgba"}).
			WithOutput(decW).
			Run()
		decW.CloseWithError(err)
	}()

	encR, encW := io.Pipe()
	encDone := make(chan error, 1)
	go func() {
		raw := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
			"format":    "rawvideo",
			"pix_fmt":   "rgba",
			"s":         fmt.Sprintf("%dx%d", meta.Width, meta.Height),
			"framerate": meta.FPSRational,
		})
		streams := []*ffmpeg.Stream{raw}
		kwargs := ffmpeg.KwArgs{
			"c:v":     encodeCodec,
			"pix_fmt": encodePixFmt,
			"preset":  encodePreset,
		}
		if meta.HasAudio {
			streams = append(streams, ffmpeg.Input(bgPath).Get("a"))
			kwargs["c:a"] = "copy"
			kwargs["shortest"] = ""
		}
		err := ffmpeg.Output(streams, outPath, kwargs).
			OverWriteOutput().
			WithInput(encR).
			Run()
		encR.CloseWithError(err)
		encDone <- err
	}()

	frameBytes := meta.Width * meta.Height * 4
	buf := make([]byte, frameBytes)
	frame := &image.NRGBA{
		Pix:    buf,
		Stride: meta.Width * 4,
		Rect:   image.Rect(0, 0, meta.Width, meta.Height),
	}

	var frameIdx int64
	var loopErr error
	for {
		if err := ctx.Err(); err != nil {
			loopErr = err
			break
		}

		_, err := io.ReadFull(decR, buf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			loopErr = &DecodeError{Path: bgPath, Err: err}
			break
		}

		t := float64(frameIdx) / meta.FPS
		for _, l := range layers {
			if l.active(t) {
				compositeOver(frame, l.frameAt(t), l.pos)
			}
		}

		if _, err := encW.Write(buf); err != nil {
			loopErr = &EncodeError{Path: outPath, Err: err}
			break
		}
		frameIdx++
	}

	decR.Close()
	encW.Close()
	encErr := <-encDone

	if loopErr != nil {
		os.Remove(outPath)
		return loopErr
	}
	if encErr != nil {
		os.Remove(outPath)
		return &EncodeError{Path: outPath, Err: encErr}
	}
	return nil
}
