package nav

// CollisionSupervisor watches the world's monotonic collision counter
// and turns increments into corrective back-off motions. It only ever
// reads deltas against its own last-seen value; the counter itself is
// reset by the transport at episode start.
type CollisionSupervisor struct {
	lastSeen int
	total    int
	stepDist float64
}

// NewCollisionSupervisor snapshots the counter at episode start.
func NewCollisionSupervisor(initial int, stepDist float64) *CollisionSupervisor {
	return &CollisionSupervisor{lastSeen: initial, stepDist: stepDist}
}

// Observe folds a new counter reading into the running total. If the
// counter increased since the last observation it returns the delta
// and a back-off command to issue immediately; otherwise the command
// is nil. Best-effort damage control, not collision avoidance.
func (s *CollisionSupervisor) Observe(current int) (int, *Command) {
	if current <= s.lastSeen {
		return 0, nil
	}
	delta := current - s.lastSeen
	s.lastSeen = current
	s.total += delta
	cmd := BackOff(s.stepDist)
	return delta, &cmd
}

// Total returns collisions accumulated since episode start.
func (s *CollisionSupervisor) Total() int {
	return s.total
}
