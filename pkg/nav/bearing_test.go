package nav

import (
	"math"
	"testing"
)

func TestBearing_GoalAhead(t *testing.T) {
	pos := Position{}
	goal := Position{Z: 10}
	if b := Bearing(pos, goal); math.Abs(b) > 1e-9 {
		t.Errorf("goal straight ahead along +z should give bearing 0, got %v", b)
	}
}

func TestBearing_Quadrants(t *testing.T) {
	tests := []struct {
		name string
		goal Position
		want float64
	}{
		{"northeast diagonal", Position{X: 45, Z: 45}, 45},
		{"due +x", Position{X: 10}, 90},
		{"due -x", Position{X: -10}, -90},
		{"behind", Position{Z: -10}, 180},
		{"back-left diagonal", Position{X: -45, Z: -45}, -135},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(Position{}, tt.goal)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Bearing to %+v = %v, want %v", tt.goal, got, tt.want)
			}
		})
	}
}

func TestBearing_TranslationInvariant(t *testing.T) {
	pos := Position{X: 3, Z: -7}
	goal := Position{X: 20, Z: 11}
	base := Bearing(pos, goal)

	offsets := []Position{{X: 5, Z: 5}, {X: -100, Z: 42}, {X: 0.25, Z: -0.25}}
	for _, off := range offsets {
		shifted := Bearing(
			Position{X: pos.X + off.X, Z: pos.Z + off.Z},
			Position{X: goal.X + off.X, Z: goal.Z + off.Z},
		)
		if math.Abs(shifted-base) > 1e-9 {
			t.Errorf("bearing changed under translation %+v: %v vs %v", off, shifted, base)
		}
	}
}

func TestCloseToGoal_Boundary(t *testing.T) {
	goal := Position{X: 3, Z: 4} // distance 5 from origin
	if !CloseToGoal(Position{}, goal, 5.0) {
		t.Error("distance exactly equal to radius must count as arrived")
	}
	if CloseToGoal(Position{}, goal, 4.999) {
		t.Error("distance above radius must not count as arrived")
	}
	if !CloseToGoal(Position{}, goal, 5.001) {
		t.Error("distance below radius must count as arrived")
	}
}

func TestPlanarDistance_IgnoresVertical(t *testing.T) {
	a := Position{X: 0, Y: 0, Z: 0}
	b := Position{X: 3, Y: 99, Z: 4}
	if d := PlanarDistance(a, b); math.Abs(d-5) > 1e-9 {
		t.Errorf("PlanarDistance = %v, want 5 (y must be ignored)", d)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{90, 90},
		{-90, -90},
		{180, -180},
		{-180, -180},
		{270, -90},
		{-270, 90},
		{540, -180},
		{361, 1},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
