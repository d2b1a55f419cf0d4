package nav

// Command is a relative motion: rotate by Turn degrees (positive turns
// toward +x when facing +z), then translate Distance along the new
// forward axis. Distance may be zero (turn in place) or negative
// (back off).
type Command struct {
	Turn     float64 `json:"turn"`
	Distance float64 `json:"distance"`
}

// backOffRatio is the fraction of the forward step reversed after a
// detected collision.
const backOffRatio = 0.6

// StepToward converts a chosen heading into a motion command. No
// smoothing is applied between ticks; consecutive commands can be
// abrupt.
func StepToward(angle, stepDist float64) Command {
	return Command{Turn: angle, Distance: stepDist}
}

// Stop returns the null command issued on goal arrival.
func Stop() Command {
	return Command{}
}

// BackOff returns the corrective reverse motion issued after a
// collision increment.
func BackOff(stepDist float64) Command {
	return Command{Turn: 0, Distance: -backOffRatio * stepDist}
}
