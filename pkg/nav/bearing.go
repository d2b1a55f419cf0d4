// Package nav contains the planning core of go-navsim: goal bearing
// math, heading selection over a sampled cost field, relative motion
// commands, and collision bookkeeping. It is transport-free; both the
// polling navigator and the bridge push controller plan through it.
package nav

import "math"

// Position is a world coordinate. Y is ground height and is ignored by
// all planar math.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Bearing returns the rotation in degrees that points from pos toward
// goal on the ground plane. Heading 0 faces +z, so a goal directly
// ahead yields 0 and a goal to the +x side yields a positive angle.
func Bearing(pos, goal Position) float64 {
	dx := goal.X - pos.X
	dz := goal.Z - pos.Z
	return math.Atan2(dx, dz) * 180 / math.Pi
}

// PlanarDistance returns the Euclidean distance from pos to goal
// ignoring the vertical axis.
func PlanarDistance(pos, goal Position) float64 {
	dx := goal.X - pos.X
	dz := goal.Z - pos.Z
	return math.Hypot(dx, dz)
}

// CloseToGoal reports whether pos is within radius of goal. The
// boundary counts as arrived.
func CloseToGoal(pos, goal Position, radius float64) bool {
	return PlanarDistance(pos, goal) <= radius
}

// WrapAngle normalizes an angle in degrees to [-180, 180).
func WrapAngle(deg float64) float64 {
	return math.Mod(deg+540, 360) - 180
}

// Clamp restricts v to the range [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
