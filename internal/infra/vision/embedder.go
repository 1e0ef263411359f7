package vision

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// DNNEmbedder extracts face embeddings with a pretrained FaceNet-style
// network loaded through OpenCV's DNN module.
type DNNEmbedder struct {
	net       gocv.Net
	inputSize int
	dim       int
	mean      gocv.Scalar
}

func NewDNNEmbedder(modelPath string, inputSize, dim int) (*DNNEmbedder, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("load embedding model %s", modelPath)
	}

	// CPU inference; the batch pipeline runs wherever the dataset lives.
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNEmbedder{
		net:       net,
		inputSize: inputSize,
		dim:       dim,
		mean:      gocv.NewScalar(127.5, 127.5, 127.5, 0),
	}, nil
}

func (e *DNNEmbedder) Close() {
	e.net.Close()
}

func (e *DNNEmbedder) Dim() int {
	return e.dim
}

func (e *DNNEmbedder) Embed(framePath string, region image.Rectangle) ([]float32, error) {
	img := gocv.IMRead(framePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("read frame %s", framePath)
	}
	defer img.Close()

	face := img.Region(region)
	defer face.Close()

	blob := gocv.BlobFromImage(face, 1.0/128.0,
		image.Pt(e.inputSize, e.inputSize),
		e.mean, true, false,
	)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	total := out.Total()
	if total != e.dim {
		return nil, fmt.Errorf("model produced %d values, want %d", total, e.dim)
	}

	embedding := make([]float32, e.dim)
	for i := 0; i < e.dim; i++ {
		embedding[i] = out.GetFloatAt(0, i)
	}

	return l2Normalize(embedding), nil
}

func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
