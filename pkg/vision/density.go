package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// RGB thresholds for the simulated arena: obstacles render as green
// boxes (0x00ff00), the goal flag as cyan (0x00ccff).
const (
	densityTargetWidth = 320

	obstacleGreenMin = 150
	obstacleRedMax   = 100
	obstacleBlueMax  = 100

	goalGreenMin = 120
	goalBlueMin  = 180
	goalRedMax   = 100
)

// DensityFilter is the bridge controller's heuristic: downscale the
// frame, mark obstacle-colored pixels occupied and track the goal
// marker's centroid while scanning. It evolved against the browser
// simulator's flat-shaded renderer and leans on its exact colors.
type DensityFilter struct{}

// NewDensityFilter returns the RGB density filter.
func NewDensityFilter() *DensityFilter {
	return &DensityFilter{}
}

// Analyze implements Filter. The returned mask is at the downscaled
// working resolution, not the input resolution.
func (f *DensityFilter) Analyze(img gocv.Mat) (gocv.Mat, Summary, error) {
	if img.Empty() {
		return gocv.Mat{}, Summary{}, fmt.Errorf("empty frame")
	}

	work := img
	scaled := false
	if img.Cols() > densityTargetWidth {
		work = gocv.NewMat()
		scaled = true
		h := img.Rows() * densityTargetWidth / img.Cols()
		gocv.Resize(img, &work, image.Pt(densityTargetWidth, h), 0, 0, gocv.InterpolationLinear)
	}
	if scaled {
		defer work.Close()
	}

	w := work.Cols()
	h := work.Rows()
	mask := gocv.Zeros(h, w, gocv.MatTypeCV8U)

	var goalSumX, goalCount int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := work.GetVecbAt(y, x) // BGR
			b, g, r := px[0], px[1], px[2]
			if g > obstacleGreenMin && r < obstacleRedMax && b < obstacleBlueMax {
				mask.SetUCharAt(y, x, 255)
			}
			if g > goalGreenMin && b > goalBlueMin && r < goalRedMax {
				goalSumX += x
				goalCount++
			}
		}
	}

	sum := summarizeMask(mask)
	if goalCount > 0 {
		sum.GoalVisible = true
		sum.GoalCentroidX = float64(goalSumX) / float64(goalCount)
	}
	return mask, sum, nil
}
