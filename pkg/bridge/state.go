package bridge

import (
	"sync"

	"github.com/teslashibe/go-navsim/pkg/nav"
)

// Capture is the bridge-side record of the most recent simulator
// frame. Seq is assigned by the bridge on receipt and is the
// timestamp polling clients deduplicate against.
type Capture struct {
	Seq        int64         `json:"timestamp"`
	Image      string        `json:"image"` // data URI, as received
	Position   *nav.Position `json:"position,omitempty"`
	HeadingDeg *float64      `json:"headingDeg,omitempty"`
}

// EpisodeState is the shared state between the simulator read path and
// the HTTP/controller read paths. Single-writer discipline:
//
//   - collisions:  written only by the WS read pump (RecordCollision),
//     reset only via Reset.
//   - goalReached: written only by the WS read pump (SetGoalReached),
//     cleared only via Reset.
//   - lastCapture: written only by the WS read pump (RecordCapture).
//
// Everything else only reads. No ambient package globals.
type EpisodeState struct {
	mu           sync.RWMutex
	collisions   int
	goalReached  bool
	goalPosition *nav.Position
	lastCapture  *Capture
	captureSeq   int64
}

// NewEpisodeState returns a zeroed state.
func NewEpisodeState() *EpisodeState {
	return &EpisodeState{}
}

// RecordCollision increments the monotonic collision counter.
func (s *EpisodeState) RecordCollision() {
	s.mu.Lock()
	s.collisions++
	s.mu.Unlock()
}

// Collisions returns the counter value.
func (s *EpisodeState) Collisions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collisions
}

// SetGoalReached latches goal arrival with the position reported by
// the simulator.
func (s *EpisodeState) SetGoalReached(pos *nav.Position) {
	s.mu.Lock()
	s.goalReached = true
	s.goalPosition = pos
	s.mu.Unlock()
}

// GoalReached returns the latch and the arrival position (nil until
// reached).
func (s *EpisodeState) GoalReached() (bool, *nav.Position) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goalReached, s.goalPosition
}

// RecordCapture stores the newest frame and stamps it with the next
// sequence number.
func (s *EpisodeState) RecordCapture(image string, pos *nav.Position, heading *float64) Capture {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureSeq++
	c := Capture{
		Seq:        s.captureSeq,
		Image:      image,
		Position:   pos,
		HeadingDeg: heading,
	}
	s.lastCapture = &c
	return c
}

// LastCapture returns the newest frame, or nil before the first one.
func (s *EpisodeState) LastCapture() *Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCapture
}

// Reset clears collision and goal state at episode start. The capture
// sequence keeps counting so stale-frame dedup survives resets.
func (s *EpisodeState) Reset() {
	s.mu.Lock()
	s.collisions = 0
	s.goalReached = false
	s.goalPosition = nil
	s.mu.Unlock()
}
