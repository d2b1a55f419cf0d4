package experiment

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/sim"
)

// fakeBridge reaches the goal after a fixed number of status polls and
// reports a scripted collision count per trial.
type fakeBridge struct {
	pollsUntilGoal int
	collisions     []int // per trial, in order
	neverReach     bool

	polls       int
	trial       int
	resets      int
	goals       []string
	motionCalls []struct {
		enabled bool
		speed   float64
	}
}

func (f *fakeBridge) Reset() error {
	f.resets++
	f.polls = 0
	return nil
}

func (f *fakeBridge) SetGoalCorner(corner string) (nav.Position, error) {
	f.goals = append(f.goals, corner)
	return nav.CornerToCoords(corner, nav.DefaultHalfExtent, nav.DefaultCornerMargin)
}

func (f *fakeBridge) SetObstacleMotion(enabled bool, speed float64, _ nav.Bounds, _ bool) error {
	f.motionCalls = append(f.motionCalls, struct {
		enabled bool
		speed   float64
	}{enabled, speed})
	return nil
}

func (f *fakeBridge) Status() (sim.Status, error) {
	count := 0
	if f.trial < len(f.collisions) {
		count = f.collisions[f.trial]
	}
	f.polls++
	if !f.neverReach && f.polls >= f.pollsUntilGoal {
		f.trial++
		return sim.Status{Collisions: count, GoalReached: true}, nil
	}
	return sim.Status{Collisions: count}, nil
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.GoalTimeout = 50 * time.Millisecond
	cfg.PollInterval = time.Millisecond
	return cfg
}

func TestRunLevel1AveragesCollisions(t *testing.T) {
	bridge := &fakeBridge{pollsUntilGoal: 2, collisions: []int{0, 2, 1, 1}}
	runner := NewRunner(bridge, fastConfig())

	summary, err := runner.RunLevel1()
	if err != nil {
		t.Fatalf("RunLevel1: %v", err)
	}
	if summary.Level != 1 || len(summary.Results) != 4 {
		t.Fatalf("summary = level %d with %d results, want level 1 with 4",
			summary.Level, len(summary.Results))
	}
	if summary.AverageCollisions != 1.0 {
		t.Fatalf("average = %v, want 1.0", summary.AverageCollisions)
	}
	if bridge.resets != 4 {
		t.Fatalf("resets = %d, want one per trial", bridge.resets)
	}
	want := []string{"NE", "NW", "SE", "SW"}
	for i, corner := range want {
		if bridge.goals[i] != corner {
			t.Fatalf("goal order = %v, want %v", bridge.goals, want)
		}
	}
	for i, call := range bridge.motionCalls {
		if call.enabled {
			t.Fatalf("trial %d enabled motion during level 1", i)
		}
	}
	for _, trial := range summary.Results {
		if trial.ID == "" {
			t.Fatal("trial missing ID")
		}
		if !trial.GoalReached {
			t.Fatalf("trial %s did not reach goal", trial.Corner)
		}
	}
}

func TestRunLevel2EnablesMotion(t *testing.T) {
	bridge := &fakeBridge{pollsUntilGoal: 1, collisions: []int{3, 3, 3, 3}}
	runner := NewRunner(bridge, fastConfig())

	summary, err := runner.RunLevel2()
	if err != nil {
		t.Fatalf("RunLevel2: %v", err)
	}
	if summary.AverageCollisions != 3.0 {
		t.Fatalf("average = %v, want 3.0", summary.AverageCollisions)
	}
	for i, call := range bridge.motionCalls {
		if !call.enabled || call.speed != 0.06 {
			t.Fatalf("trial %d motion = %+v, want enabled at 0.06", i, call)
		}
	}
}

func TestRunTrialTimeoutIsNotAnError(t *testing.T) {
	bridge := &fakeBridge{neverReach: true, collisions: []int{7}}
	runner := NewRunner(bridge, fastConfig())

	trial, err := runner.RunTrial("NE", false, 0)
	if err != nil {
		t.Fatalf("RunTrial: %v", err)
	}
	if trial.GoalReached {
		t.Fatal("trial reported goal reached despite timeout")
	}
	if trial.Collisions != 7 {
		t.Fatalf("collisions = %d, want last observed 7", trial.Collisions)
	}
}

func TestRunLevel3SweepsAllSpeeds(t *testing.T) {
	cfg := fastConfig()
	cfg.SweepSpeeds = []float64{0.02, 0.08}
	bridge := &fakeBridge{pollsUntilGoal: 1, collisions: []int{1, 1, 1, 1, 4, 4, 4, 4}}
	runner := NewRunner(bridge, cfg)

	points, err := runner.RunLevel3()
	if err != nil {
		t.Fatalf("RunLevel3: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].Speed != 0.02 || points[0].AvgCollisions != 1.0 {
		t.Fatalf("first point = %+v, want speed 0.02 avg 1.0", points[0])
	}
	if points[1].Speed != 0.08 || points[1].AvgCollisions != 4.0 {
		t.Fatalf("second point = %+v, want speed 0.08 avg 4.0", points[1])
	}
	for i, call := range bridge.motionCalls {
		wantSpeed := cfg.SweepSpeeds[i/4]
		if !call.enabled || call.speed != wantSpeed {
			t.Fatalf("trial %d motion = %+v, want enabled at %v", i, call, wantSpeed)
		}
	}
}

func TestRenderSpeedChart(t *testing.T) {
	points := []SpeedPoint{
		{Speed: 0.02, AvgCollisions: 0.5},
		{Speed: 0.06, AvgCollisions: 2.25},
	}
	var buf bytes.Buffer
	if err := RenderSpeedChart(points, &buf); err != nil {
		t.Fatalf("RenderSpeedChart: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Average collisions vs obstacle speed") {
		t.Fatal("chart HTML missing title")
	}
	if !strings.Contains(out, "0.06") {
		t.Fatal("chart HTML missing speed axis value")
	}
}
