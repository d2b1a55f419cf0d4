// Package protocol defines the WebSocket message types exchanged
// between the bridge and the arena simulator. Commands flow bridge ->
// simulator as flat JSON objects keyed by "command"; events flow back
// keyed by "type". The shapes match what the browser simulator speaks.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/teslashibe/go-navsim/pkg/nav"
)

// Command names, bridge -> simulator.
const (
	CmdMove              = "move"
	CmdMoveRelative      = "move_relative"
	CmdStop              = "stop"
	CmdCaptureImage      = "capture_image"
	CmdSetGoal           = "set_goal"
	CmdSetObstacles      = "set_obstacles"
	CmdSetObstacleMotion = "set_obstacle_motion"
	CmdReset             = "reset"
)

// Event types, simulator -> bridge.
const (
	EventCollision       = "collision"
	EventCaptureResponse = "capture_image_response"
	EventGoalReached     = "goal_reached"
)

// Move commands the robot to an absolute floor position.
type Move struct {
	Command string       `json:"command"`
	Target  nav.Position `json:"target"`
}

// NewMove builds an absolute move command.
func NewMove(target nav.Position) Move {
	return Move{Command: CmdMove, Target: target}
}

// MoveRelative commands a rotation followed by a forward translation.
type MoveRelative struct {
	Command  string  `json:"command"`
	Turn     float64 `json:"turn"`
	Distance float64 `json:"distance"`
}

// NewMoveRelative builds a relative move from a planner command.
func NewMoveRelative(cmd nav.Command) MoveRelative {
	return MoveRelative{Command: CmdMoveRelative, Turn: cmd.Turn, Distance: cmd.Distance}
}

// Stop halts the robot.
type Stop struct {
	Command string `json:"command"`
}

// NewStop builds a stop command.
func NewStop() Stop {
	return Stop{Command: CmdStop}
}

// CaptureImage asks the simulator to render and send back one frame.
type CaptureImage struct {
	Command string `json:"command"`
}

// NewCaptureImage builds a capture request.
func NewCaptureImage() CaptureImage {
	return CaptureImage{Command: CmdCaptureImage}
}

// SetGoal places the goal marker.
type SetGoal struct {
	Command  string       `json:"command"`
	Position nav.Position `json:"position"`
}

// NewSetGoal builds a goal placement command.
func NewSetGoal(pos nav.Position) SetGoal {
	return SetGoal{Command: CmdSetGoal, Position: pos}
}

// SetObstacles repositions the static obstacles.
type SetObstacles struct {
	Command   string         `json:"command"`
	Positions []nav.Position `json:"positions"`
}

// NewSetObstacles builds an obstacle placement command.
func NewSetObstacles(positions []nav.Position) SetObstacles {
	return SetObstacles{Command: CmdSetObstacles, Positions: positions}
}

// SetObstacleMotion toggles moving obstacles. Bounds confine the
// motion; Bounce reflects obstacles at the bounds.
type SetObstacleMotion struct {
	Command    string      `json:"command"`
	Enabled    bool        `json:"enabled"`
	Speed      float64     `json:"speed"`
	Velocities [][]float64 `json:"velocities,omitempty"`
	Bounds     nav.Bounds  `json:"bounds"`
	Bounce     bool        `json:"bounce"`
}

// NewSetObstacleMotion builds an obstacle motion command.
func NewSetObstacleMotion(enabled bool, speed float64, bounds nav.Bounds, bounce bool) SetObstacleMotion {
	return SetObstacleMotion{
		Command: CmdSetObstacleMotion,
		Enabled: enabled,
		Speed:   speed,
		Bounds:  bounds,
		Bounce:  bounce,
	}
}

// Reset clears world state: robot pose, obstacles, collision counter.
type Reset struct {
	Command string `json:"command"`
}

// NewReset builds a reset command.
func NewReset() Reset {
	return Reset{Command: CmdReset}
}

// Command is the simulator-side view of a bridge message: one envelope
// with every command's fields, populated depending on Name.
type Command struct {
	Name string `json:"command"`

	// CmdMove
	Target *nav.Position `json:"target,omitempty"`

	// CmdMoveRelative
	Turn     float64 `json:"turn,omitempty"`
	Distance float64 `json:"distance,omitempty"`

	// CmdSetGoal
	Position *nav.Position `json:"position,omitempty"`

	// CmdSetObstacles
	Positions []nav.Position `json:"positions,omitempty"`

	// CmdSetObstacleMotion
	Enabled    bool        `json:"enabled,omitempty"`
	Speed      float64     `json:"speed,omitempty"`
	Velocities [][]float64 `json:"velocities,omitempty"`
	Bounds     *nav.Bounds `json:"bounds,omitempty"`
	Bounce     bool        `json:"bounce,omitempty"`
}

// ParseCommand decodes a bridge message on the simulator side.
func ParseCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("parse bridge command: %w", err)
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("parse bridge command: missing command name")
	}
	return &cmd, nil
}

// Event is a simulator -> bridge message. Fields are populated
// depending on Type.
type Event struct {
	Type string `json:"type"`

	// EventCollision
	Collision bool `json:"collision,omitempty"`

	// EventCaptureResponse
	Image      string        `json:"image,omitempty"` // data URI or raw base64 PNG
	Position   *nav.Position `json:"position,omitempty"`
	HeadingDeg *float64      `json:"headingDeg,omitempty"`
	Timestamp  int64         `json:"timestamp,omitempty"`
}

// ParseEvent decodes a simulator message. Unknown types are returned
// as-is so callers can log and skip them.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse simulator event: %w", err)
	}
	return &ev, nil
}

// NewCollisionEvent reports one collision.
func NewCollisionEvent() Event {
	return Event{Type: EventCollision, Collision: true}
}

// NewCaptureResponse wraps an encoded frame with the robot's pose at
// capture time.
func NewCaptureResponse(image string, pos nav.Position, headingDeg float64, ts int64) Event {
	p := pos
	h := headingDeg
	return Event{
		Type:       EventCaptureResponse,
		Image:      image,
		Position:   &p,
		HeadingDeg: &h,
		Timestamp:  ts,
	}
}

// NewGoalReachedEvent reports arrival at the goal.
func NewGoalReachedEvent(pos nav.Position) Event {
	p := pos
	return Event{Type: EventGoalReached, Position: &p}
}
