package bridge

import (
	"context"
	"time"

	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/protocol"
	"github.com/teslashibe/go-navsim/pkg/vision"
)

// ControllerConfig tunes the push-based autonomous controller.
type ControllerConfig struct {
	Corner string // goal corner for the episode

	MaxTurnDeg     float64 // per-tick turn clamp
	ForwardStep    float64 // forward distance when the path is clear
	YawDeadBandDeg float64 // heading errors below this go straight
	GoalBias       float64 // extra turn away from a blocked center while marker-steering

	// CenterBlockDensity is the mid-band obstacle pixel count above
	// which the center third counts as blocked during marker steering.
	CenterBlockDensity int

	Planner nav.PlannerConfig
	Vision  vision.Config

	FrameTimeout time.Duration // wait per capture round trip
	TickDelay    time.Duration // pacing between ticks
	ConnectPoll  time.Duration // wait between checks for a simulator
}

// DefaultControllerConfig returns the tuned push controller settings.
func DefaultControllerConfig() ControllerConfig {
	visionCfg := vision.DefaultConfig()
	visionCfg.Heuristic = vision.HeuristicDensity
	return ControllerConfig{
		Corner:             "NE",
		MaxTurnDeg:         30,
		ForwardStep:        0.5,
		YawDeadBandDeg:     5,
		GoalBias:           10,
		CenterBlockDensity: 150,
		Planner:            nav.DefaultPlannerConfig(),
		Vision:             visionCfg,
		FrameTimeout:       2 * time.Second,
		TickDelay:          100 * time.Millisecond,
		ConnectPoll:        200 * time.Millisecond,
	}
}

// PlanMove decides one tick of the push controller. Evaluation order
// is safety-tiered:
//
//  1. Near-field block: anything occupied in the bottom-band center
//     forces a turn in place toward the emptier side.
//  2. Goal marker visible: steer by its horizontal offset, biased away
//     from a blocked center.
//  3. Pose fallback: run the shared heading planner over the far-field
//     cost field against the pose-derived bearing error (wrapped to
//     [-180,180]); turn in place if the chosen heading exceeds the
//     dead-band, otherwise go straight.
//
// headingDeg and pos may be nil when the simulator omits them; the
// pose tier then degrades to driving straight.
func PlanMove(field nav.CostField, sum vision.Summary, headingDeg *float64, pos *nav.Position, goal nav.Position, cfg ControllerConfig) nav.Command {
	if sum.NearCenter > 0 {
		if sum.NearLeft < sum.NearRight {
			return nav.Command{Turn: -cfg.MaxTurnDeg, Distance: 0}
		}
		return nav.Command{Turn: cfg.MaxTurnDeg, Distance: 0}
	}

	if sum.GoalVisible {
		turn := nav.Clamp(sum.GoalOffset()*cfg.MaxTurnDeg, -cfg.MaxTurnDeg, cfg.MaxTurnDeg)
		if sum.CenterDensity > cfg.CenterBlockDensity {
			if sum.LeftDensity < sum.RightDensity {
				turn -= cfg.GoalBias
			} else {
				turn += cfg.GoalBias
			}
			turn = nav.Clamp(turn, -cfg.MaxTurnDeg, cfg.MaxTurnDeg)
		}
		return nav.Command{Turn: turn, Distance: cfg.ForwardStep}
	}

	if headingDeg == nil || pos == nil {
		return nav.Command{Turn: 0, Distance: cfg.ForwardStep}
	}

	bearingErr := nav.WrapAngle(nav.Bearing(*pos, goal) - *headingDeg)
	chosen := bearingErr
	if len(field) > 0 {
		chosen, _ = nav.SelectHeading(field, bearingErr, cfg.Planner)
	}
	turn := nav.Clamp(chosen, -cfg.MaxTurnDeg, cfg.MaxTurnDeg)
	if turn > cfg.YawDeadBandDeg || turn < -cfg.YawDeadBandDeg {
		return nav.Command{Turn: turn, Distance: 0}
	}
	return nav.Command{Turn: 0, Distance: cfg.ForwardStep}
}

// Controller is the push-based control loop hosted by the bridge. It
// requests captures, waits for the frame event, plans, and broadcasts
// the motion. Collision and goal events arrive on the WS read path and
// only ever get read here.
type Controller struct {
	server   *Server
	cfg      ControllerConfig
	pipeline *vision.Pipeline
	frames   chan Capture
}

// NewController attaches a controller to a server. Call before Listen.
func NewController(server *Server, cfg ControllerConfig) (*Controller, error) {
	pipeline, err := vision.NewPipeline(cfg.Vision)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		server:   server,
		cfg:      cfg,
		pipeline: pipeline,
		frames:   make(chan Capture, 2),
	}
	server.SetCaptureSink(c.offerFrame)
	return c, nil
}

// offerFrame queues a capture, dropping it when the controller is
// behind; the loop only ever wants the newest frame.
func (c *Controller) offerFrame(capture Capture) {
	select {
	case c.frames <- capture:
	default:
	}
}

// Run drives the episode until the goal-reached event or ctx
// cancellation. Blocks; run in a goroutine next to Listen.
func (c *Controller) Run(ctx context.Context) error {
	// Wait for a simulator to connect.
	for c.server.Hub().ClientCount() == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ConnectPoll):
		}
	}

	goal, err := nav.CornerToCoords(c.cfg.Corner, nav.DefaultHalfExtent, nav.DefaultCornerMargin)
	if err != nil {
		return err
	}
	if err := c.server.Hub().BroadcastJSON(protocol.NewSetGoal(goal)); err != nil {
		return err
	}
	log.Info("autonomous goal set", "corner", c.cfg.Corner, "x", goal.X, "z", goal.Z)

	for {
		if reached, pos := c.server.State().GoalReached(); reached {
			c.server.Hub().BroadcastJSON(protocol.NewStop())
			log.Info("autonomous run complete", "position", pos,
				"collisions", c.server.State().Collisions())
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.server.Hub().BroadcastJSON(protocol.NewCaptureImage()); err != nil {
			// Simulator went away; wait for it to come back.
			time.Sleep(c.cfg.ConnectPoll)
			continue
		}

		var capture Capture
		select {
		case capture = <-c.frames:
		case <-time.After(c.cfg.FrameTimeout):
			// No frame in time: send nothing, ask again.
			continue
		case <-ctx.Done():
			return ctx.Err()
		}

		cmd, err := c.plan(capture, goal)
		if err != nil {
			log.Warn("frame rejected", "err", err)
			continue
		}
		c.server.Hub().BroadcastJSON(protocol.NewMoveRelative(cmd))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.TickDelay):
		}
	}
}

// plan converts one capture into a motion command.
func (c *Controller) plan(capture Capture, goal nav.Position) (nav.Command, error) {
	raw, err := protocol.DecodeImagePayload(capture.Image)
	if err != nil {
		return nav.Command{}, err
	}
	field, sum, err := c.pipeline.Perceive(raw)
	if err != nil {
		return nav.Command{}, err
	}
	return PlanMove(field, sum, capture.HeadingDeg, capture.Position, goal, c.cfg), nil
}
