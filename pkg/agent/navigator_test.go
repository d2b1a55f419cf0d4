package agent

import (
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/sim"
	"github.com/teslashibe/go-navsim/pkg/vision"
)

// fakeWorld scripts the transport side of an episode.
type fakeWorld struct {
	frames     []*sim.Frame // returned in order; nil entry = ErrNoFrame
	frameIdx   int
	collisions []int // readings returned in order, last repeats
	collIdx    int

	moves    []nav.Command
	stops    int
	resets   int
	motionOn bool
	goalSet  nav.Position
}

func (w *fakeWorld) Reset() error { w.resets++; return nil }

func (w *fakeWorld) SetGoalCorner(corner string) (nav.Position, error) {
	pos, err := nav.CornerToCoords(corner, nav.DefaultHalfExtent, nav.DefaultCornerMargin)
	w.goalSet = pos
	return pos, err
}

func (w *fakeWorld) SetGoalCoords(pos nav.Position) (nav.Position, error) {
	w.goalSet = pos
	return pos, nil
}

func (w *fakeWorld) SetObstacleMotion(enabled bool, speed float64, bounds nav.Bounds, bounce bool) error {
	w.motionOn = enabled
	return nil
}

func (w *fakeWorld) Collisions() (int, error) {
	if w.collIdx < len(w.collisions) {
		c := w.collisions[w.collIdx]
		w.collIdx++
		return c, nil
	}
	if len(w.collisions) > 0 {
		return w.collisions[len(w.collisions)-1], nil
	}
	return 0, nil
}

func (w *fakeWorld) AcquireFrame(timeout time.Duration) (*sim.Frame, error) {
	if w.frameIdx >= len(w.frames) {
		return nil, sim.ErrNoFrame
	}
	f := w.frames[w.frameIdx]
	w.frameIdx++
	if f == nil {
		return nil, sim.ErrNoFrame
	}
	return f, nil
}

func (w *fakeWorld) MoveRelative(turn, distance float64) error {
	w.moves = append(w.moves, nav.Command{Turn: turn, Distance: distance})
	return nil
}

func (w *fakeWorld) Stop() error { w.stops++; return nil }

// fakePerceiver returns a fixed cost field regardless of the frame.
type fakePerceiver struct {
	field nav.CostField
}

func (p *fakePerceiver) Perceive([]byte) (nav.CostField, vision.Summary, error) {
	return p.field, vision.Summary{}, nil
}

// clearField returns n headings over fov with uniform cost.
func clearField(n int, fov, cost float64) nav.CostField {
	field := make(nav.CostField, 0, n)
	for i := 0; i < n; i++ {
		field = append(field, nav.Candidate{
			Angle: -fov/2 + fov*float64(i)/float64(n-1),
			Cost:  cost,
		})
	}
	return field
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = 0
	cfg.TickDelay = 0
	cfg.FrameTimeout = 10 * time.Millisecond
	return cfg
}

func frameAt(pos nav.Position, ts int64) *sim.Frame {
	return &sim.Frame{Image: []byte("frame"), Position: pos, Timestamp: ts}
}

func TestRun_ClearFieldSteersTowardGoal(t *testing.T) {
	world := &fakeWorld{
		frames: []*sim.Frame{
			frameAt(nav.Position{}, 1),
			frameAt(nav.Position{X: 44, Z: 44}, 2), // within goal radius
		},
	}
	cfg := fastConfig()
	cfg.Corner = ""
	cfg.Goal = &nav.Position{X: 45, Z: 45}
	perceiver := &fakePerceiver{field: clearField(cfg.NumHeadings, cfg.FOVDeg, 0)}

	result, err := New(world, perceiver, cfg, nil).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.GoalReached {
		t.Error("goal not reached")
	}
	if len(world.moves) == 0 {
		t.Fatal("no motion issued")
	}

	// From the origin the goal at (45, 45) bears 45 degrees; the first
	// command must turn to the nearest sampled heading and step forward.
	first := world.moves[0]
	resolution := cfg.FOVDeg / float64(cfg.NumHeadings-1)
	if math.Abs(first.Turn-45) > resolution/2+1e-9 {
		t.Errorf("first turn = %v, want within %v of 45", first.Turn, resolution/2)
	}
	if first.Distance != cfg.StepDist {
		t.Errorf("first distance = %v, want %v", first.Distance, cfg.StepDist)
	}
	if world.stops != 1 {
		t.Errorf("stop issued %d times, want 1 on arrival", world.stops)
	}
}

func TestRun_FullyOccupiedFieldStillMoves(t *testing.T) {
	world := &fakeWorld{
		frames: []*sim.Frame{
			frameAt(nav.Position{}, 1),
			frameAt(nav.Position{X: 45, Z: 45}, 2),
		},
	}
	cfg := fastConfig()
	cfg.Corner = ""
	cfg.Goal = &nav.Position{X: 45, Z: 45}
	perceiver := &fakePerceiver{field: clearField(cfg.NumHeadings, cfg.FOVDeg, 1.0)}

	result, err := New(world, perceiver, cfg, nil).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.GoalReached {
		t.Error("goal not reached")
	}
	first := world.moves[0]
	if first.Distance != cfg.StepDist {
		t.Errorf("fallback tier must still move forward, distance = %v", first.Distance)
	}
	// Goal alignment alone decides: nearest sampled angle to 45 is 44.
	if math.Abs(first.Turn-44) > 1e-9 {
		t.Errorf("fallback turn = %v, want 44", first.Turn)
	}
}

func TestRun_StepLimitExcludesAcquisitionRetries(t *testing.T) {
	// Every other acquisition fails; failures must not consume steps.
	var frames []*sim.Frame
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			frames = append(frames, nil)
		} else {
			frames = append(frames, frameAt(nav.Position{}, int64(i)))
		}
	}
	world := &fakeWorld{frames: frames}
	cfg := fastConfig()
	cfg.Corner = "NE"
	cfg.MaxSteps = 5
	perceiver := &fakePerceiver{field: clearField(cfg.NumHeadings, cfg.FOVDeg, 0)}

	result, err := New(world, perceiver, cfg, nil).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.GoalReached {
		t.Error("goal should not be reachable in this script")
	}
	if result.Steps != 5 {
		t.Errorf("steps = %d, want exactly 5", result.Steps)
	}
	if len(world.moves) != 5 {
		t.Errorf("issued %d moves, want 5", len(world.moves))
	}
}

func TestRun_CollisionTriggersBackOff(t *testing.T) {
	world := &fakeWorld{
		frames: []*sim.Frame{
			frameAt(nav.Position{}, 1),
			frameAt(nav.Position{}, 2),
			frameAt(nav.Position{X: 45, Z: 45}, 3),
		},
		// Initial snapshot 0, then a jump to 2 on the first tick.
		collisions: []int{0, 2, 2, 2},
	}
	cfg := fastConfig()
	cfg.Corner = ""
	cfg.Goal = &nav.Position{X: 45, Z: 45}
	perceiver := &fakePerceiver{field: clearField(cfg.NumHeadings, cfg.FOVDeg, 0)}

	result, err := New(world, perceiver, cfg, nil).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Collisions != 2 {
		t.Errorf("collisions = %d, want 2", result.Collisions)
	}

	// Tick 1 issues a step then the back-off {0, -0.6*step}.
	if len(world.moves) < 2 {
		t.Fatalf("moves = %v", world.moves)
	}
	backOff := world.moves[1]
	if backOff.Turn != 0 || math.Abs(backOff.Distance-(-0.6*cfg.StepDist)) > 1e-9 {
		t.Errorf("back-off = %+v, want {0, %v}", backOff, -0.6*cfg.StepDist)
	}
}

func TestRun_NoGoalConfiguredIsFatal(t *testing.T) {
	cfg := fastConfig()
	cfg.Corner = ""
	cfg.Goal = nil
	_, err := New(&fakeWorld{}, &fakePerceiver{}, cfg, nil).Run()
	if err == nil {
		t.Error("episode must not start without a resolvable goal")
	}
}

func TestRun_MovingObstaclesEnabled(t *testing.T) {
	world := &fakeWorld{
		frames: []*sim.Frame{frameAt(nav.Position{X: 45, Z: -45}, 1)},
	}
	cfg := fastConfig()
	cfg.Corner = "NE"
	cfg.MovingObstacles = true
	cfg.ObstacleSpeed = 0.06
	perceiver := &fakePerceiver{field: clearField(cfg.NumHeadings, cfg.FOVDeg, 0)}

	if _, err := New(world, perceiver, cfg, nil).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !world.motionOn {
		t.Error("obstacle motion not enabled at episode start")
	}
	if world.resets != 1 {
		t.Errorf("resets = %d, want 1", world.resets)
	}
}
