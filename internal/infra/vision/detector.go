package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CascadeDetector finds faces with an OpenCV Haar cascade and returns the
// largest detection expanded by a relative margin.
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	minSize    int
	margin     float64
}

func NewCascadeDetector(cascadePath string, minSize int, margin float64) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("load face cascade %s", cascadePath)
	}
	return &CascadeDetector{classifier: classifier, minSize: minSize, margin: margin}, nil
}

func (d *CascadeDetector) Close() {
	d.classifier.Close()
}

func (d *CascadeDetector) DetectLargestFace(framePath string) (image.Rectangle, bool, error) {
	img := gocv.IMRead(framePath, gocv.IMReadColor)
	if img.Empty() {
		return image.Rectangle{}, false, fmt.Errorf("read frame %s", framePath)
	}
	defer img.Close()

	rects := d.classifier.DetectMultiScaleWithParams(
		img, 1.1, 3, 0,
		image.Pt(d.minSize, d.minSize),
		image.Pt(0, 0),
	)
	if len(rects) == 0 {
		return image.Rectangle{}, false, nil
	}

	largest := rects[0]
	for _, r := range rects[1:] {
		if area(r) > area(largest) {
			largest = r
		}
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	return expand(largest, d.margin, bounds), true, nil
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// expand grows the rectangle by margin on each side, clamped to bounds.
func expand(r image.Rectangle, margin float64, bounds image.Rectangle) image.Rectangle {
	dx := int(float64(r.Dx()) * margin)
	dy := int(float64(r.Dy()) * margin)
	grown := image.Rect(r.Min.X-dx, r.Min.Y-dy, r.Max.X+dx, r.Max.Y+dy)
	return grown.Intersect(bounds)
}
