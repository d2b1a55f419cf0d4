package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// HSV thresholds. A pixel is occupied if it is dark (low value, any
// hue) or vividly colored (high saturation). Fixed constants, not
// adaptive: lighting changes in the arena are a known blind spot.
const (
	hsvDarkValueMax   = 70
	hsvSaturationMin  = 80
	hsvSaturatedValue = 40
	hsvMedianKernel   = 5
	hsvCloseKernel    = 5
	hsvCloseIters     = 2
)

// HSVFilter is the polling navigator's obstacle heuristic: threshold
// in HSV space, despeckle with a median pass, then close small gaps so
// thin obstacle edges survive column sampling.
type HSVFilter struct{}

// NewHSVFilter returns the HSV threshold filter.
func NewHSVFilter() *HSVFilter {
	return &HSVFilter{}
}

// Analyze implements Filter. The HSV heuristic knows nothing about
// goal markers; the Summary carries band densities only.
func (f *HSVFilter) Analyze(img gocv.Mat) (gocv.Mat, Summary, error) {
	if img.Empty() {
		return gocv.Mat{}, Summary{}, fmt.Errorf("empty frame")
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.InRangeWithScalars(hsv,
		gocv.NewScalar(0, 0, 0, 0),
		gocv.NewScalar(180, 255, hsvDarkValueMax, 0),
		&dark)

	saturated := gocv.NewMat()
	defer saturated.Close()
	gocv.InRangeWithScalars(hsv,
		gocv.NewScalar(0, hsvSaturationMin, hsvSaturatedValue, 0),
		gocv.NewScalar(180, 255, 255, 0),
		&saturated)

	mask := gocv.NewMat()
	gocv.BitwiseOr(dark, saturated, &mask)

	gocv.MedianBlur(mask, &mask, hsvMedianKernel)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(hsvCloseKernel, hsvCloseKernel))
	defer kernel.Close()
	gocv.MorphologyExWithParams(mask, &mask, gocv.MorphClose, kernel, hsvCloseIters, gocv.BorderConstant)

	return mask, summarizeMask(mask), nil
}
