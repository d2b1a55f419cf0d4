// Package video records annotated episode footage. Frames are blended
// with their obstacle mask and a status line before writing, so a
// recording shows what the planner saw, not just the raw camera feed.
package video

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-navsim/pkg/sim"
	"github.com/teslashibe/go-navsim/pkg/vision"
)

const (
	codec  = "mp4v"
	fps    = 10.0
	width  = 640
	height = 480
)

// Writer implements agent.Recorder on top of gocv's VideoWriter. The
// writer is opened lazily on the first frame so an episode with no
// recordable frames leaves no file behind.
type Writer struct {
	path     string
	pipeline *vision.Pipeline
	out      *gocv.VideoWriter
}

// NewWriter prepares a recorder writing to path. The pipeline should
// match the one driving the episode so the overlay shows the same mask
// the planner used.
func NewWriter(path string, pipeline *vision.Pipeline) *Writer {
	return &Writer{path: path, pipeline: pipeline}
}

// Record overlays the frame and appends it to the video.
func (w *Writer) Record(frame *sim.Frame, status string) error {
	if w.out == nil {
		out, err := gocv.VideoWriterFile(w.path, codec, fps, width, height, true)
		if err != nil {
			return fmt.Errorf("open video %s: %w", w.path, err)
		}
		w.out = out
	}

	encoded, err := w.pipeline.Overlay(frame.Image, status)
	if err != nil {
		return err
	}
	img, err := gocv.IMDecode(encoded, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("decode overlay: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return fmt.Errorf("decode overlay: empty image")
	}

	if img.Cols() != width || img.Rows() != height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(img, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
		return w.out.Write(resized)
	}
	return w.out.Write(img)
}

// Close finishes the video file. Safe to call when nothing was
// recorded.
func (w *Writer) Close() error {
	if w.out == nil {
		return nil
	}
	err := w.out.Close()
	w.out = nil
	return err
}
