// Package experiment drives benchmark episodes against a running
// bridge and autonomous controller. Three levels: static obstacles,
// moving obstacles at a fixed speed, and a speed sweep that charts
// average collisions per obstacle speed.
package experiment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/sim"
)

// Bridge is the control surface a trial needs. *sim.Client satisfies
// it.
type Bridge interface {
	Reset() error
	SetGoalCorner(corner string) (nav.Position, error)
	SetObstacleMotion(enabled bool, speed float64, bounds nav.Bounds, bounce bool) error
	Status() (sim.Status, error)
}

// Trial is the outcome of one corner run.
type Trial struct {
	ID          string  `json:"id"`
	Corner      string  `json:"corner"`
	Moving      bool    `json:"moving"`
	Speed       float64 `json:"speed"`
	GoalReached bool    `json:"goal_reached"`
	Collisions  int     `json:"collisions"`
	Seconds     float64 `json:"seconds"`
}

// LevelSummary aggregates the four corner trials of levels 1 and 2.
type LevelSummary struct {
	Level             int     `json:"level"`
	Results           []Trial `json:"results"`
	AverageCollisions float64 `json:"average_collisions"`
}

// SpeedPoint is one sweep sample for level 3.
type SpeedPoint struct {
	Speed         float64 `json:"speed"`
	AvgCollisions float64 `json:"avg_collisions"`
	Trials        []Trial `json:"trials"`
}

// Config tunes the runner.
type Config struct {
	Corners      []string      // trial order
	GoalTimeout  time.Duration // per-trial wait for goal_reached
	PollInterval time.Duration // /status poll pacing
	Level2Speed  float64       // obstacle speed for level 2
	SweepSpeeds  []float64     // obstacle speeds for level 3
}

// DefaultConfig mirrors the benchmark protocol: all four corners, a
// two minute budget per trial, and a five-point speed sweep.
func DefaultConfig() Config {
	return Config{
		Corners:      []string{"NE", "NW", "SE", "SW"},
		GoalTimeout:  120 * time.Second,
		PollInterval: 500 * time.Millisecond,
		Level2Speed:  0.06,
		SweepSpeeds:  []float64{0.02, 0.04, 0.06, 0.08, 0.10},
	}
}

// Runner executes trials against one bridge.
type Runner struct {
	bridge Bridge
	cfg    Config
}

// NewRunner creates a runner.
func NewRunner(bridge Bridge, cfg Config) *Runner {
	return &Runner{bridge: bridge, cfg: cfg}
}

// RunTrial resets the world, sets the goal corner, configures obstacle
// motion, and waits for the controller to reach the goal. A trial that
// times out is not an error; it is reported with GoalReached false and
// whatever collisions accumulated.
func (r *Runner) RunTrial(corner string, moving bool, speed float64) (Trial, error) {
	trial := Trial{
		ID:     uuid.NewString(),
		Corner: corner,
		Moving: moving,
	}
	if moving {
		trial.Speed = speed
	}

	if err := r.bridge.Reset(); err != nil {
		return trial, fmt.Errorf("reset: %w", err)
	}
	if _, err := r.bridge.SetGoalCorner(corner); err != nil {
		return trial, fmt.Errorf("set goal %s: %w", corner, err)
	}
	if err := r.bridge.SetObstacleMotion(moving, speed, nav.ArenaBounds(), true); err != nil {
		return trial, fmt.Errorf("obstacle motion: %w", err)
	}

	start := time.Now()
	status, reached := r.waitForGoal()
	trial.Seconds = time.Since(start).Seconds()
	trial.GoalReached = reached
	trial.Collisions = status.Collisions

	log.Info("trial finished",
		"trial", trial.ID, "corner", corner, "moving", moving, "speed", trial.Speed,
		"goal_reached", reached, "collisions", trial.Collisions)
	return trial, nil
}

// waitForGoal polls /status until the goal latch is set or the budget
// runs out, returning the final status either way.
func (r *Runner) waitForGoal() (sim.Status, bool) {
	deadline := time.Now().Add(r.cfg.GoalTimeout)
	var last sim.Status
	for {
		status, err := r.bridge.Status()
		if err != nil {
			log.Warn("status poll failed", "err", err)
		} else {
			last = status
			if status.GoalReached {
				return last, true
			}
		}
		if !time.Now().Before(deadline) {
			return last, false
		}
		time.Sleep(r.cfg.PollInterval)
	}
}

// runCorners executes one trial per configured corner and averages the
// collision counts.
func (r *Runner) runCorners(moving bool, speed float64) ([]Trial, float64, error) {
	trials := make([]Trial, 0, len(r.cfg.Corners))
	total := 0
	for _, corner := range r.cfg.Corners {
		trial, err := r.RunTrial(corner, moving, speed)
		if err != nil {
			return trials, 0, err
		}
		trials = append(trials, trial)
		total += trial.Collisions
	}
	avg := 0.0
	if len(trials) > 0 {
		avg = float64(total) / float64(len(trials))
	}
	return trials, avg, nil
}

// RunLevel1 runs all corners with static obstacles.
func (r *Runner) RunLevel1() (LevelSummary, error) {
	trials, avg, err := r.runCorners(false, 0)
	return LevelSummary{Level: 1, Results: trials, AverageCollisions: avg}, err
}

// RunLevel2 runs all corners with moving obstacles at the fixed
// benchmark speed.
func (r *Runner) RunLevel2() (LevelSummary, error) {
	trials, avg, err := r.runCorners(true, r.cfg.Level2Speed)
	return LevelSummary{Level: 2, Results: trials, AverageCollisions: avg}, err
}

// RunLevel3 sweeps obstacle speed and reports average collisions per
// speed.
func (r *Runner) RunLevel3() ([]SpeedPoint, error) {
	points := make([]SpeedPoint, 0, len(r.cfg.SweepSpeeds))
	for _, speed := range r.cfg.SweepSpeeds {
		trials, avg, err := r.runCorners(true, speed)
		if err != nil {
			return points, err
		}
		points = append(points, SpeedPoint{Speed: speed, AvgCollisions: avg, Trials: trials})
	}
	return points, nil
}
