// Package agent drives one navigation episode at a time: acquire a
// frame, mask obstacles, pick a heading toward the goal, issue the
// motion, account for collisions, repeat until arrival or the step
// budget runs out.
package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/sim"
	"github.com/teslashibe/go-navsim/pkg/vision"
)

// World is everything the navigator needs from the simulator
// transport. *sim.Client implements it; tests use fakes.
type World interface {
	Reset() error
	SetGoalCorner(corner string) (nav.Position, error)
	SetGoalCoords(pos nav.Position) (nav.Position, error)
	SetObstacleMotion(enabled bool, speed float64, bounds nav.Bounds, bounce bool) error
	Collisions() (int, error)
	AcquireFrame(timeout time.Duration) (*sim.Frame, error)
	MoveRelative(turn, distance float64) error
	Stop() error
}

// Perceiver reduces an encoded camera frame to a cost field.
// *vision.Pipeline implements it.
type Perceiver interface {
	Perceive(encoded []byte) (nav.CostField, vision.Summary, error)
}

// Recorder receives every forward-progressing frame for debug output.
// Optional; recording failures never disturb the control loop.
type Recorder interface {
	Record(frame *sim.Frame, status string) error
	Close() error
}

// Result summarizes a finished episode.
type Result struct {
	Collisions  int
	Steps       int
	GoalReached bool
}

// Navigator runs episodes against a World. One episode at a time; the
// world's collision counter and robot pose are shared state, so
// episodes never overlap.
type Navigator struct {
	world    World
	perceive Perceiver
	cfg      Config
	recorder Recorder
}

// New creates a navigator. recorder may be nil.
func New(world World, perceiver Perceiver, cfg Config, recorder Recorder) *Navigator {
	return &Navigator{
		world:    world,
		perceive: perceiver,
		cfg:      cfg,
		recorder: recorder,
	}
}

// setup resets the world, resolves the goal, and optionally enables
// moving obstacles. A goal that cannot be resolved is fatal: the
// episode never enters the running state.
func (n *Navigator) setup() (nav.Position, error) {
	if err := n.world.Reset(); err != nil {
		return nav.Position{}, fmt.Errorf("reset episode: %w", err)
	}

	var goal nav.Position
	var err error
	switch {
	case n.cfg.Corner != "":
		goal, err = n.world.SetGoalCorner(n.cfg.Corner)
	case n.cfg.Goal != nil:
		goal, err = n.world.SetGoalCoords(*n.cfg.Goal)
	default:
		return nav.Position{}, errors.New("no goal configured: need a corner name or coordinates")
	}
	if err != nil {
		return nav.Position{}, fmt.Errorf("set goal: %w", err)
	}

	if n.cfg.MovingObstacles {
		if err := n.world.SetObstacleMotion(true, n.cfg.ObstacleSpeed, nav.ArenaBounds(), true); err != nil {
			return nav.Position{}, fmt.Errorf("enable obstacle motion: %w", err)
		}
	}
	return goal, nil
}

// Run executes one episode and returns its result. Frame acquisition
// failures are retried without consuming steps; transport failures
// abort the run.
func (n *Navigator) Run() (Result, error) {
	goal, err := n.setup()
	if err != nil {
		return Result{}, err
	}
	logger := log.With("corner", n.cfg.Corner, "goal_x", goal.X, "goal_z", goal.Z)
	logger.Info("episode start", "moving_obstacles", n.cfg.MovingObstacles, "speed", n.cfg.ObstacleSpeed)

	initial, err := n.world.Collisions()
	if err != nil {
		return Result{}, fmt.Errorf("read collision counter: %w", err)
	}
	supervisor := nav.NewCollisionSupervisor(initial, n.cfg.StepDist)

	if n.recorder != nil {
		defer n.recorder.Close()
	}

	steps := 0
	goalReached := false
	for steps < n.cfg.MaxSteps {
		frame, err := n.world.AcquireFrame(n.cfg.FrameTimeout)
		if errors.Is(err, sim.ErrNoFrame) {
			time.Sleep(n.cfg.RetryDelay)
			continue
		}
		if err != nil {
			return Result{Collisions: supervisor.Total(), Steps: steps}, fmt.Errorf("acquire frame: %w", err)
		}

		field, _, err := n.perceive.Perceive(frame.Image)
		if err != nil {
			// Malformed payload: log, skip, do not consume a step.
			logger.Warn("frame rejected", "err", err)
			time.Sleep(n.cfg.RetryDelay)
			continue
		}

		bearing := nav.Bearing(frame.Position, goal)
		angle, score := nav.SelectHeading(field, bearing, n.cfg.Planner)
		cmd := nav.StepToward(angle, n.cfg.StepDist)
		if err := n.world.MoveRelative(cmd.Turn, cmd.Distance); err != nil {
			return Result{Collisions: supervisor.Total(), Steps: steps}, fmt.Errorf("issue motion: %w", err)
		}
		logger.Debug("tick", "step", steps, "bearing", bearing, "heading", angle, "score", score)

		count, err := n.world.Collisions()
		if err != nil {
			return Result{Collisions: supervisor.Total(), Steps: steps}, fmt.Errorf("read collision counter: %w", err)
		}
		if delta, correction := supervisor.Observe(count); correction != nil {
			logger.Info("collision detected, backing off", "delta", delta, "total", supervisor.Total())
			if err := n.world.MoveRelative(correction.Turn, correction.Distance); err != nil {
				return Result{Collisions: supervisor.Total(), Steps: steps}, fmt.Errorf("issue back-off: %w", err)
			}
		}

		if nav.CloseToGoal(frame.Position, goal, n.cfg.GoalRadius) {
			if err := n.world.Stop(); err != nil {
				logger.Warn("stop command failed at goal", "err", err)
			}
			goalReached = true
			break
		}

		if n.recorder != nil {
			status := fmt.Sprintf("Goal:%s Steps:%d Collisions:%d", n.cfg.Corner, steps, supervisor.Total())
			if err := n.recorder.Record(frame, status); err != nil {
				logger.Warn("recorder error", "err", err)
			}
		}

		steps++
		if n.cfg.TickDelay > 0 {
			time.Sleep(n.cfg.TickDelay)
		}
	}

	logger.Info("episode done", "steps", steps, "collisions", supervisor.Total(), "goal_reached", goalReached)
	return Result{
		Collisions:  supervisor.Total(),
		Steps:       steps,
		GoalReached: goalReached,
	}, nil
}
