package vision

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandClampsToBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	r := expand(image.Rect(10, 10, 30, 30), 0.2, bounds)
	assert.Equal(t, image.Rect(6, 6, 34, 34), r)

	// Near the edge the margin is clipped.
	r = expand(image.Rect(0, 0, 30, 30), 0.5, bounds)
	assert.Equal(t, image.Rect(0, 0, 45, 45), r)
}

func TestExpandZeroMargin(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	r := image.Rect(20, 20, 60, 60)
	assert.Equal(t, r, expand(r, 0, bounds))
}

func TestL2Normalize(t *testing.T) {
	v := l2Normalize([]float32{3, 4})

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestL2NormalizeZeroVector(t *testing.T) {
	v := l2Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}
