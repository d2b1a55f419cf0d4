// Package fakesim is a deterministic stand-in for the browser arena
// simulator. It speaks the same WebSocket protocol as the real thing:
// it executes motion commands against a simple kinematic model,
// renders synthetic camera frames, and emits collision and
// goal-reached events. Useful for driving the bridge and both control
// loops without a browser.
package fakesim

import (
	"math"
	"sync"

	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/protocol"
)

const (
	robotRadius    = 1.0
	obstacleRadius = 1.5
	goalRadius     = 3.0
)

// collisionDistance is the center distance below which the robot and
// an obstacle touch.
const collisionDistance = robotRadius + obstacleRadius

type obstacle struct {
	pos nav.Position
	vel [2]float64 // x, z per tick
}

// defaultObstacles lays out a fixed field so runs are reproducible.
func defaultObstacles() []obstacle {
	coords := [][2]float64{
		{-20, -20}, {20, -20}, {0, -10},
		{-25, 10}, {25, 10}, {0, 25},
		{-10, 35}, {12, -35},
	}
	obs := make([]obstacle, len(coords))
	for i, c := range coords {
		obs[i] = obstacle{pos: nav.Position{X: c[0], Y: 2, Z: c[1]}}
	}
	return obs
}

// World is the simulated arena. Safe for concurrent use; the command
// handler and the motion ticker both touch it.
type World struct {
	mu sync.Mutex

	pos        nav.Position
	headingDeg float64

	goal        *nav.Position
	goalLatched bool

	obstacles  []obstacle
	motionOn   bool
	speed      float64
	bounds     nav.Bounds
	bounce     bool
	captureSeq int64
}

// NewWorld creates a world with the robot at the origin facing +z and
// the default obstacle layout.
func NewWorld() *World {
	return &World{
		obstacles: defaultObstacles(),
		bounds:    nav.ArenaBounds(),
		bounce:    true,
	}
}

// Pose returns the robot position and heading.
func (w *World) Pose() (nav.Position, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pos, w.headingDeg
}

// reset restores the initial world. Caller holds the lock.
func (w *World) reset() {
	w.pos = nav.Position{}
	w.headingDeg = 0
	w.goal = nil
	w.goalLatched = false
	w.obstacles = defaultObstacles()
	w.motionOn = false
}

// Apply executes one bridge command and returns the events it caused.
// Capture requests are not handled here; they need rendering and go
// through Capture.
func (w *World) Apply(cmd *protocol.Command) []protocol.Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch cmd.Name {
	case protocol.CmdReset:
		w.reset()

	case protocol.CmdMove:
		if cmd.Target != nil {
			w.pos.X = clampTo(cmd.Target.X, -nav.DefaultHalfExtent, nav.DefaultHalfExtent)
			w.pos.Z = clampTo(cmd.Target.Z, -nav.DefaultHalfExtent, nav.DefaultHalfExtent)
			return w.checkOutcomes()
		}

	case protocol.CmdMoveRelative:
		w.headingDeg = nav.WrapAngle(w.headingDeg + cmd.Turn)
		rad := w.headingDeg * math.Pi / 180
		w.pos.X = clampTo(w.pos.X+cmd.Distance*math.Sin(rad), -nav.DefaultHalfExtent, nav.DefaultHalfExtent)
		w.pos.Z = clampTo(w.pos.Z+cmd.Distance*math.Cos(rad), -nav.DefaultHalfExtent, nav.DefaultHalfExtent)
		return w.checkOutcomes()

	case protocol.CmdStop:
		// Motion is instantaneous here; nothing to halt.

	case protocol.CmdSetGoal:
		if cmd.Position != nil {
			g := *cmd.Position
			w.goal = &g
			w.goalLatched = false
		}

	case protocol.CmdSetObstacles:
		obs := make([]obstacle, len(cmd.Positions))
		for i, p := range cmd.Positions {
			obs[i] = obstacle{pos: p}
		}
		w.obstacles = obs

	case protocol.CmdSetObstacleMotion:
		w.motionOn = cmd.Enabled
		w.speed = cmd.Speed
		if cmd.Bounds != nil {
			w.bounds = *cmd.Bounds
		}
		w.bounce = cmd.Bounce
		if cmd.Enabled {
			w.assignVelocities(cmd.Velocities)
		}
	}
	return nil
}

// assignVelocities seeds per-obstacle velocities. Explicit velocities
// win; otherwise directions alternate around the compass so the field
// spreads deterministically. Caller holds the lock.
func (w *World) assignVelocities(explicit [][]float64) {
	for i := range w.obstacles {
		if i < len(explicit) && len(explicit[i]) >= 2 {
			w.obstacles[i].vel = [2]float64{explicit[i][0], explicit[i][1]}
			continue
		}
		angle := float64(i) * math.Pi / 4
		w.obstacles[i].vel = [2]float64{w.speed * math.Cos(angle), w.speed * math.Sin(angle)}
	}
}

// Step advances moving obstacles one tick and returns any collision
// events the motion caused.
func (w *World) Step() []protocol.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.motionOn {
		return nil
	}
	for i := range w.obstacles {
		o := &w.obstacles[i]
		o.pos.X += o.vel[0]
		o.pos.Z += o.vel[1]
		if o.pos.X < w.bounds.MinX || o.pos.X > w.bounds.MaxX {
			o.pos.X = clampTo(o.pos.X, w.bounds.MinX, w.bounds.MaxX)
			if w.bounce {
				o.vel[0] = -o.vel[0]
			}
		}
		if o.pos.Z < w.bounds.MinZ || o.pos.Z > w.bounds.MaxZ {
			o.pos.Z = clampTo(o.pos.Z, w.bounds.MinZ, w.bounds.MaxZ)
			if w.bounce {
				o.vel[1] = -o.vel[1]
			}
		}
	}
	return w.collisionEvents()
}

// checkOutcomes reports collisions and first goal arrival after a
// robot move. Caller holds the lock.
func (w *World) checkOutcomes() []protocol.Event {
	events := w.collisionEvents()
	if w.goal != nil && !w.goalLatched && nav.CloseToGoal(w.pos, *w.goal, goalRadius) {
		w.goalLatched = true
		events = append(events, protocol.NewGoalReachedEvent(w.pos))
	}
	return events
}

// collisionEvents emits one event per obstacle currently touching the
// robot. Caller holds the lock.
func (w *World) collisionEvents() []protocol.Event {
	var events []protocol.Event
	for _, o := range w.obstacles {
		if nav.PlanarDistance(w.pos, o.pos) < collisionDistance {
			events = append(events, protocol.NewCollisionEvent())
		}
	}
	return events
}

func clampTo(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
