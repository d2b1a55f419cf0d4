package bridge

import (
	"testing"

	"github.com/teslashibe/go-navsim/pkg/nav"
)

func TestEpisodeStateCollisions(t *testing.T) {
	s := NewEpisodeState()
	if got := s.Collisions(); got != 0 {
		t.Fatalf("fresh state collisions = %d, want 0", got)
	}
	s.RecordCollision()
	s.RecordCollision()
	s.RecordCollision()
	if got := s.Collisions(); got != 3 {
		t.Fatalf("collisions = %d, want 3", got)
	}
	s.Reset()
	if got := s.Collisions(); got != 0 {
		t.Fatalf("collisions after reset = %d, want 0", got)
	}
}

func TestEpisodeStateGoalLatch(t *testing.T) {
	s := NewEpisodeState()
	if reached, _ := s.GoalReached(); reached {
		t.Fatal("goal reached before any event")
	}
	pos := &nav.Position{X: 45, Z: -45}
	s.SetGoalReached(pos)
	reached, got := s.GoalReached()
	if !reached {
		t.Fatal("goal latch not set")
	}
	if got == nil || got.X != 45 || got.Z != -45 {
		t.Fatalf("goal position = %+v, want {45 0 -45}", got)
	}
	s.Reset()
	if reached, pos := s.GoalReached(); reached || pos != nil {
		t.Fatalf("goal latch survived reset: %v %+v", reached, pos)
	}
}

func TestEpisodeStateCaptureSequence(t *testing.T) {
	s := NewEpisodeState()
	if s.LastCapture() != nil {
		t.Fatal("capture present before any frame")
	}
	heading := 90.0
	first := s.RecordCapture("data:image/png;base64,AAAA", &nav.Position{X: 1}, &heading)
	second := s.RecordCapture("data:image/png;base64,BBBB", nil, nil)
	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("seq = %d, %d; want 1, 2", first.Seq, second.Seq)
	}
	last := s.LastCapture()
	if last == nil || last.Image != "data:image/png;base64,BBBB" {
		t.Fatalf("last capture = %+v, want second frame", last)
	}

	// Resets must not rewind the sequence, or polling clients would
	// mistake the next fresh frame for one they already consumed.
	s.Reset()
	third := s.RecordCapture("data:image/png;base64,CCCC", nil, nil)
	if third.Seq != 3 {
		t.Fatalf("seq after reset = %d, want 3", third.Seq)
	}
}

func TestHubBroadcastWithoutSimulators(t *testing.T) {
	h := NewHub()
	if err := h.BroadcastJSON(map[string]string{"command": "stop"}); err != ErrNoSimulators {
		t.Fatalf("broadcast on empty hub = %v, want ErrNoSimulators", err)
	}
}
