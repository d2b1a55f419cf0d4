package nav

import (
	"math"
	"testing"
)

// evenField builds a cost field of n headings evenly spaced over
// [-fov/2, fov/2] with per-candidate costs from fn.
func evenField(n int, fov float64, fn func(i int, angle float64) float64) CostField {
	field := make(CostField, 0, n)
	for i := 0; i < n; i++ {
		angle := -fov/2 + fov*float64(i)/float64(n-1)
		field = append(field, Candidate{Angle: angle, Cost: fn(i, angle)})
	}
	return field
}

func TestSelectHeading_PrefersSafe(t *testing.T) {
	cfg := DefaultPlannerConfig()

	// Everything blocked except one off-axis heading. The safe one must
	// win even though blocked headings align better with the goal.
	field := evenField(31, 120, func(i int, angle float64) float64 {
		if math.Abs(angle-(-40)) < 2 {
			return 0.1
		}
		return 0.9
	})
	angle, _ := SelectHeading(field, 0, cfg)

	var chosen Candidate
	for _, c := range field {
		if c.Angle == angle {
			chosen = c
		}
	}
	if chosen.Cost >= cfg.SafeThreshold {
		t.Errorf("chose unsafe heading %v with cost %v while a safe one existed", angle, chosen.Cost)
	}
}

func TestSelectHeading_FallbackMatchesBruteForce(t *testing.T) {
	cfg := DefaultPlannerConfig()

	// Every candidate at or above the threshold: the planner must fall
	// back to the global minimum score rather than refuse to move.
	field := evenField(31, 120, func(i int, angle float64) float64 {
		return 0.35 + 0.5*math.Abs(math.Sin(float64(i)))
	})
	goalBearing := 25.0
	angle, score := SelectHeading(field, goalBearing, cfg)

	bestScore := math.Inf(1)
	bestAngle := 0.0
	for _, c := range field {
		s := cfg.ObstacleWeight*c.Cost + cfg.GoalWeight*math.Abs(c.Angle-goalBearing)/60
		if s < bestScore {
			bestScore = s
			bestAngle = c.Angle
		}
	}
	if angle != bestAngle || math.Abs(score-bestScore) > 1e-9 {
		t.Errorf("fallback chose (%v, %v), brute force says (%v, %v)", angle, score, bestAngle, bestScore)
	}
}

func TestSelectHeading_FullyOccupiedStillMoves(t *testing.T) {
	cfg := DefaultPlannerConfig()

	// All costs at 1.0: selection degrades to goal alignment alone.
	field := evenField(31, 120, func(int, float64) float64 { return 1.0 })
	goalBearing := 45.0
	angle, score := SelectHeading(field, goalBearing, cfg)

	if math.IsInf(score, 1) {
		t.Fatal("planner returned no heading for a fully occupied field")
	}
	// Nearest sampled angle to 45 in a 31-point 120 degree fan is 44.
	if math.Abs(angle-44) > 1e-9 {
		t.Errorf("expected nearest-to-goal angle 44, got %v", angle)
	}
}

func TestSelectHeading_ClearFieldTracksGoal(t *testing.T) {
	cfg := DefaultPlannerConfig()

	field := evenField(31, 120, func(int, float64) float64 { return 0 })
	goalBearing := 45.0
	angle, score := SelectHeading(field, goalBearing, cfg)

	resolution := 120.0 / 30
	if math.Abs(angle-goalBearing) > resolution/2+1e-9 {
		t.Errorf("clear field: chose %v, want within half a step of %v", angle, goalBearing)
	}
	wantScore := cfg.GoalWeight * math.Abs(angle-goalBearing) / 60
	if math.Abs(score-wantScore) > 1e-9 {
		t.Errorf("clear field: score %v, want pure alignment term %v", score, wantScore)
	}
}

func TestSelectHeading_TieBreaksByInputOrder(t *testing.T) {
	cfg := DefaultPlannerConfig()

	// Two safe candidates equidistant from the goal bearing score
	// identically; the first (smaller angle) must win.
	field := CostField{
		{Angle: -10, Cost: 0.1},
		{Angle: 10, Cost: 0.1},
	}
	angle, _ := SelectHeading(field, 0, cfg)
	if angle != -10 {
		t.Errorf("tie must go to the first candidate, got %v", angle)
	}
}
