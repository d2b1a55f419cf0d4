package fakesim

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/protocol"
)

// Camera model for synthetic frames. A flat pinhole projection: the
// horizontal field of view maps linearly onto the frame width and
// apparent size falls off with distance. Crude, but it produces frames
// the vision heuristics respond to the same way they respond to the
// browser renders.
const (
	frameWidth   = 640
	frameHeight  = 480
	cameraFOVDeg = 120.0
	maxDrawDist  = 60.0
)

// Capture renders the robot's current view and returns the capture
// event, sequence-stamped for stale-frame detection downstream.
func (w *World) Capture() (protocol.Event, error) {
	w.mu.Lock()
	pos := w.pos
	heading := w.headingDeg
	goal := w.goal
	obstacles := make([]obstacle, len(w.obstacles))
	copy(obstacles, w.obstacles)
	w.captureSeq++
	seq := w.captureSeq
	w.mu.Unlock()

	img := renderView(pos, heading, goal, obstacles)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return protocol.Event{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	payload := protocol.EncodeImagePayload(buf.GetBytes())
	return protocol.NewCaptureResponse(payload, pos, heading, seq), nil
}

// renderView draws sky, floor, obstacles and the goal marker from the
// robot's point of view. Caller owns the returned Mat.
func renderView(pos nav.Position, headingDeg float64, goal *nav.Position, obstacles []obstacle) gocv.Mat {
	// Pale sky over a light floor, matching the browser arena's
	// flat-shaded palette: low saturation everywhere except the green
	// obstacle boxes and the cyan goal flag, so both vision heuristics
	// see the same scene they were tuned on.
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(235, 230, 225, 0), frameHeight, frameWidth, gocv.MatTypeCV8UC3)

	floor := image.Rect(0, frameHeight/2, frameWidth, frameHeight)
	gocv.Rectangle(&img, floor, color.RGBA{R: 190, G: 190, B: 190}, -1)

	// Far objects first so near ones overdraw.
	type drawable struct {
		dist float64
		rel  float64
		col  color.RGBA
	}
	items := make([]drawable, 0, len(obstacles)+1)
	for _, o := range obstacles {
		d := nav.PlanarDistance(pos, o.pos)
		rel := nav.WrapAngle(nav.Bearing(pos, o.pos) - headingDeg)
		items = append(items, drawable{dist: d, rel: rel, col: color.RGBA{R: 0, G: 255, B: 0}})
	}
	if goal != nil {
		d := nav.PlanarDistance(pos, *goal)
		rel := nav.WrapAngle(nav.Bearing(pos, *goal) - headingDeg)
		items = append(items, drawable{dist: d, rel: rel, col: color.RGBA{R: 0, G: 204, B: 255}})
	}

	// Painter's order, far to near.
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[j].dist > items[i].dist {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	for _, it := range items {
		drawBox(&img, it.rel, it.dist, it.col)
	}
	return img
}

// drawBox projects one world object into the frame.
func drawBox(img *gocv.Mat, relBearingDeg, dist float64, col color.RGBA) {
	if dist > maxDrawDist || dist < 0.5 {
		return
	}
	halfFOV := cameraFOVDeg / 2
	if relBearingDeg < -halfFOV || relBearingDeg > halfFOV {
		return
	}

	cx := int(float64(frameWidth)/2 + relBearingDeg/halfFOV*float64(frameWidth)/2)
	// Apparent size shrinks with distance; near objects fill the frame.
	size := int(math.Min(float64(frameHeight), 900.0/dist))
	if size < 4 {
		size = 4
	}
	// Base sits on the horizon line pushed down for near objects.
	bottom := frameHeight/2 + size/2
	rect := image.Rect(cx-size/2, bottom-size, cx+size/2, bottom)
	gocv.Rectangle(img, rect, col, -1)
}
