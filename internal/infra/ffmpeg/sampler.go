package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"go.uber.org/zap"
)

// Sampler extracts a fixed number of frames spread evenly across a video
// using ffmpeg, probing the duration with ffprobe first.
type Sampler struct {
	frameCount int
	format     string
	logger     *zap.Logger
}

func NewSampler(frameCount int, format string, logger *zap.Logger) *Sampler {
	return &Sampler{frameCount: frameCount, format: format, logger: logger}
}

func (s *Sampler) SampleFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameSampleResult, error) {
	duration, err := s.getVideoDuration(ctx, videoPath)
	if err != nil {
		s.logger.Warn("could not get video duration", zap.String("video", videoPath), zap.Error(err))
	}

	framePattern := filepath.Join(outputDir, fmt.Sprintf("frame_%%04d.%s", s.format))
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%s", sampleRate(s.frameCount, duration)),
		"-frames:v", strconv.Itoa(s.frameCount),
		"-y",
		framePattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	globPattern := filepath.Join(outputDir, fmt.Sprintf("*.%s", s.format))
	frames, err := filepath.Glob(globPattern)
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames sampled from video")
	}
	sort.Strings(frames)

	s.logger.Debug("frames sampled",
		zap.String("video", videoPath),
		zap.Int("count", len(frames)),
		zap.Float64("video_duration", duration),
	)

	return &port.FrameSampleResult{
		FramePaths:    frames,
		FrameCount:    len(frames),
		VideoDuration: duration,
	}, nil
}

// sampleRate returns the ffmpeg fps filter expression that yields count
// frames spread across a video of the given duration. Falls back to one
// frame per second when the duration is unknown.
func sampleRate(count int, duration float64) string {
	if duration <= 0 {
		return "1"
	}
	return strconv.FormatFloat(float64(count)/duration, 'f', 6, 64)
}

func (s *Sampler) getVideoDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}
