package port

import "context"

type FrameSampleResult struct {
	FramePaths    []string
	FrameCount    int
	VideoDuration float64
}

// FrameSampler extracts frames spread evenly across a video into outputDir.
type FrameSampler interface {
	SampleFrames(ctx context.Context, videoPath string, outputDir string) (*FrameSampleResult, error)
}
