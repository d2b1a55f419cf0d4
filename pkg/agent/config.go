package agent

import (
	"time"

	"github.com/teslashibe/go-navsim/pkg/nav"
)

// Config holds the episode parameters for the polling navigator.
type Config struct {
	// Goal: either a named arena corner or explicit coordinates.
	// Corner wins when both are set; one of them is required.
	Corner string
	Goal   *nav.Position

	StepDist    float64 // forward distance per tick
	GoalRadius  float64 // arrival distance
	MaxSteps    int     // step budget per episode
	NumHeadings int
	FOVDeg      float64
	Planner     nav.PlannerConfig

	// Moving obstacle setup, applied at episode start when enabled.
	MovingObstacles bool
	ObstacleSpeed   float64

	FrameTimeout time.Duration // bounded wait per frame acquisition
	RetryDelay   time.Duration // sleep after a failed acquisition
	TickDelay    time.Duration // pacing between ticks
}

// DefaultConfig returns the tuned navigator parameters.
func DefaultConfig() Config {
	return Config{
		Corner:       "NE",
		StepDist:     4.0,
		GoalRadius:   3.0,
		MaxSteps:     1200,
		NumHeadings:  31,
		FOVDeg:       120,
		Planner:      nav.DefaultPlannerConfig(),
		FrameTimeout: 2 * time.Second,
		RetryDelay:   50 * time.Millisecond,
		TickDelay:    50 * time.Millisecond,
	}
}
