package vision

import (
	"math"

	"github.com/teslashibe/go-navsim/pkg/nav"
	"gocv.io/x/gocv"
)

// Band fractions of image height. Near-ground obstacles project into
// the middle third; anything occupied in the bottom band is close
// enough to block forward motion outright.
const (
	midBandTop    = 1.0 / 3
	midBandBottom = 2.0 / 3
	nearBandTop   = 0.70
	nearBandBot   = 0.92
)

// columnSpread scales the tangent projection from heading angle to
// image column.
const columnSpread = 0.3

// SampleHeadings reduces an occupancy mask to a cost field over
// [-fov/2, fov/2]. Each candidate heading projects to the image column
// cx + tan(angle)*0.3*w (clamped to bounds); its cost is the occupied
// fraction of that column inside the middle-third band. The mapping is
// monotonic in angle, so neighboring candidates sample neighboring
// columns and costs are comparable across the field.
func SampleHeadings(mask gocv.Mat, num int, fovDeg float64) nav.CostField {
	h := mask.Rows()
	w := mask.Cols()
	if h == 0 || w == 0 || num < 2 {
		return nil
	}

	cx := w / 2
	top := int(float64(h) * midBandTop)
	bottom := int(float64(h) * midBandBottom)
	rows := bottom - top
	if rows <= 0 {
		return nil
	}

	field := make(nav.CostField, 0, num)
	for i := 0; i < num; i++ {
		angle := -fovDeg/2 + fovDeg*float64(i)/float64(num-1)
		rad := angle * math.Pi / 180
		col := cx + int(math.Tan(rad)*columnSpread*float64(w))
		if col < 0 {
			col = 0
		}
		if col > w-1 {
			col = w - 1
		}

		occupied := 0
		for y := top; y < bottom; y++ {
			if mask.GetUCharAt(y, col) > 0 {
				occupied++
			}
		}
		field = append(field, nav.Candidate{
			Angle: angle,
			Cost:  float64(occupied) / float64(rows),
		})
	}
	return field
}

// summarizeMask fills the band statistics of a Summary from an
// occupancy mask: mid-band obstacle densities per horizontal third and
// near-band occupancy per third.
func summarizeMask(mask gocv.Mat) Summary {
	w := mask.Cols()
	h := mask.Rows()
	sum := Summary{Width: w, Height: h}

	count := func(top, bottom, left, right int) int {
		n := 0
		for y := top; y < bottom; y++ {
			for x := left; x < right; x++ {
				if mask.GetUCharAt(y, x) > 0 {
					n++
				}
			}
		}
		return n
	}

	midTop := int(float64(h) * midBandTop)
	midBot := int(float64(h) * midBandBottom)
	sum.LeftDensity = count(midTop, midBot, 0, w/3)
	sum.CenterDensity = count(midTop, midBot, w/3, 2*w/3)
	sum.RightDensity = count(midTop, midBot, 2*w/3, w)

	nearTop := int(float64(h) * nearBandTop)
	nearBot := int(float64(h) * nearBandBot)
	sum.NearLeft = count(nearTop, nearBot, 0, w/3)
	sum.NearCenter = count(nearTop, nearBot, w/3, 2*w/3)
	sum.NearRight = count(nearTop, nearBot, 2*w/3, w)

	return sum
}
