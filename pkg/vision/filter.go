// Package vision converts camera frames into obstacle occupancy for
// the planner. Two independently tuned heuristics implement the same
// Filter capability: an HSV threshold mask (polling navigator) and an
// RGB color-density scan that also locates the goal marker (bridge
// controller). Which one runs is a configuration choice; everything
// downstream of the mask is shared.
package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Heuristic names accepted in Config.
const (
	HeuristicHSV     = "hsv"
	HeuristicDensity = "density"
)

// Summary is the transport-free digest of one analyzed frame. All
// fields refer to the working resolution of the filter that produced
// it.
type Summary struct {
	Width  int
	Height int

	// Obstacle pixel counts per horizontal third of the mid band.
	LeftDensity   int
	CenterDensity int
	RightDensity  int

	// Goal marker, when the filter recognizes one.
	GoalVisible   bool
	GoalCentroidX float64 // pixel column of the marker centroid

	// Near-field occupancy: occupied pixels per horizontal third of
	// the bottom band. Any center occupancy blocks forward motion.
	NearLeft   int
	NearCenter int
	NearRight  int
}

// GoalOffset returns the marker's horizontal offset from frame center
// normalized to [-1, 1]. Meaningless when GoalVisible is false.
func (s Summary) GoalOffset() float64 {
	half := float64(s.Width) / 2
	if half == 0 {
		return 0
	}
	return (s.GoalCentroidX - half) / half
}

// Filter turns a color frame into a binary occupancy mask (255 =
// likely obstacle) plus a Summary. The caller owns the returned mask
// and must Close it.
type Filter interface {
	Analyze(img gocv.Mat) (gocv.Mat, Summary, error)
}

// Config selects and tunes a filter.
type Config struct {
	Heuristic   string
	NumHeadings int
	FOVDeg      float64
}

// DefaultConfig returns the polling navigator's vision settings.
func DefaultConfig() Config {
	return Config{
		Heuristic:   HeuristicHSV,
		NumHeadings: 31,
		FOVDeg:      120,
	}
}

// New builds the configured filter.
func New(cfg Config) (Filter, error) {
	switch cfg.Heuristic {
	case HeuristicHSV, "":
		return NewHSVFilter(), nil
	case HeuristicDensity:
		return NewDensityFilter(), nil
	default:
		return nil, fmt.Errorf("unknown vision heuristic %q", cfg.Heuristic)
	}
}
