package vision

import (
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func TestSampleHeadings_ColumnProjection(t *testing.T) {
	// 90x100 mask with a single occupied column dead ahead. Only the
	// zero-angle candidate should pick up cost.
	mask := gocv.Zeros(90, 100, gocv.MatTypeCV8U)
	defer mask.Close()
	for y := 30; y < 60; y++ {
		mask.SetUCharAt(y, 50, 255)
	}

	field := SampleHeadings(mask, 5, 120)
	if len(field) != 5 {
		t.Fatalf("got %d candidates, want 5", len(field))
	}

	wantAngles := []float64{-60, -30, 0, 30, 60}
	for i, c := range field {
		if math.Abs(c.Angle-wantAngles[i]) > 1e-9 {
			t.Errorf("candidate %d angle = %v, want %v", i, c.Angle, wantAngles[i])
		}
	}
	for i, c := range field {
		want := 0.0
		if c.Angle == 0 {
			want = 1.0
		}
		if math.Abs(c.Cost-want) > 1e-9 {
			t.Errorf("candidate %d (angle %v) cost = %v, want %v", i, c.Angle, c.Cost, want)
		}
	}
}

func TestSampleHeadings_AnglesStrictlyIncreasing(t *testing.T) {
	mask := gocv.Zeros(60, 80, gocv.MatTypeCV8U)
	defer mask.Close()

	field := SampleHeadings(mask, 31, 120)
	for i := 1; i < len(field); i++ {
		if field[i].Angle <= field[i-1].Angle {
			t.Fatalf("angles not strictly increasing at %d: %v then %v", i, field[i-1].Angle, field[i].Angle)
		}
	}
}

func TestSampleHeadings_IgnoresOutsideBand(t *testing.T) {
	// Occupancy above and below the middle third must not count.
	mask := gocv.Zeros(90, 100, gocv.MatTypeCV8U)
	defer mask.Close()
	for x := 0; x < 100; x++ {
		mask.SetUCharAt(0, x, 255)  // sky
		mask.SetUCharAt(89, x, 255) // floor right at the robot
	}

	field := SampleHeadings(mask, 7, 90)
	for _, c := range field {
		if c.Cost != 0 {
			t.Errorf("angle %v picked up cost %v from outside the band", c.Angle, c.Cost)
		}
	}
}

func TestSummarizeMask_NearBand(t *testing.T) {
	// 100 rows: the near band covers rows [70, 92).
	mask := gocv.Zeros(100, 90, gocv.MatTypeCV8U)
	defer mask.Close()

	// Three pixels in the near band: one per horizontal third.
	mask.SetUCharAt(75, 10, 255) // left third
	mask.SetUCharAt(80, 45, 255) // center third
	mask.SetUCharAt(85, 80, 255) // right third
	// One just below the near band, must not count.
	mask.SetUCharAt(95, 45, 255)

	sum := summarizeMask(mask)
	if sum.NearLeft != 1 || sum.NearCenter != 1 || sum.NearRight != 1 {
		t.Errorf("near occupancy = (%d,%d,%d), want (1,1,1)",
			sum.NearLeft, sum.NearCenter, sum.NearRight)
	}
}
