package port

import "image"

// FaceDetector finds the largest face in a frame image. ok is false when
// the frame contains no detectable face.
type FaceDetector interface {
	DetectLargestFace(framePath string) (region image.Rectangle, ok bool, err error)
}

// FaceEmbedder produces a fixed-size embedding for a face region of a frame.
type FaceEmbedder interface {
	Embed(framePath string, region image.Rectangle) ([]float32, error)
	Dim() int
}
