package nav

import (
	"math"
	"testing"
)

func TestCollisionSupervisor_DeltaAccounting(t *testing.T) {
	readings := []int{0, 0, 1, 1, 3, 3}
	sup := NewCollisionSupervisor(readings[0], 4.0)

	var backOffTicks []int
	for i, r := range readings {
		delta, cmd := sup.Observe(r)
		if (delta > 0) != (cmd != nil) {
			t.Fatalf("tick %d: delta %d but correction %v", i+1, delta, cmd)
		}
		if cmd != nil {
			backOffTicks = append(backOffTicks, i+1)
			if cmd.Turn != 0 || math.Abs(cmd.Distance-(-2.4)) > 1e-9 {
				t.Errorf("tick %d: back-off = %+v, want {0, -2.4}", i+1, *cmd)
			}
		}
	}

	if sup.Total() != 3 {
		t.Errorf("total collisions = %d, want 3", sup.Total())
	}
	if len(backOffTicks) != 2 || backOffTicks[0] != 3 || backOffTicks[1] != 5 {
		t.Errorf("back-off issued at ticks %v, want [3 5]", backOffTicks)
	}
}

func TestCollisionSupervisor_IgnoresNonIncrease(t *testing.T) {
	sup := NewCollisionSupervisor(5, 4.0)
	if delta, cmd := sup.Observe(5); delta != 0 || cmd != nil {
		t.Errorf("unchanged counter produced delta %d cmd %v", delta, cmd)
	}
	// A lower reading (stale transport response) must not go negative.
	if delta, cmd := sup.Observe(4); delta != 0 || cmd != nil {
		t.Errorf("decreasing counter produced delta %d cmd %v", delta, cmd)
	}
	if sup.Total() != 0 {
		t.Errorf("total = %d, want 0", sup.Total())
	}
}
