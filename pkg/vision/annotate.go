package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Annotate blends the occupancy mask over the frame and stamps a
// status line in the top-left corner. The mask must match the frame
// resolution (the HSV filter guarantees this; the density filter's
// downscaled mask is resized up first). The caller owns the returned
// Mat.
func Annotate(img, mask gocv.Mat, text string) (gocv.Mat, error) {
	if img.Empty() || mask.Empty() {
		return gocv.Mat{}, fmt.Errorf("annotate: empty input")
	}

	m := mask
	resized := false
	if mask.Cols() != img.Cols() || mask.Rows() != img.Rows() {
		m = gocv.NewMat()
		resized = true
		gocv.Resize(mask, &m, image.Pt(img.Cols(), img.Rows()), 0, 0, gocv.InterpolationNearestNeighbor)
	}
	if resized {
		defer m.Close()
	}

	m3 := gocv.NewMat()
	defer m3.Close()
	gocv.CvtColor(m, &m3, gocv.ColorGrayToBGR)

	overlay := gocv.NewMat()
	gocv.AddWeighted(img, 0.8, m3, 0.2, 0, &overlay)
	gocv.PutText(&overlay, text, image.Pt(10, 24), gocv.FontHersheySimplex, 0.7, color.RGBA{G: 255}, 2)
	return overlay, nil
}
