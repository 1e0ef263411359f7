package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/metrics"
	"go.uber.org/zap"
)

// EmbedVideosUseCase turns each pending video into a fixed-length
// sequence of face embeddings: sample frames, detect the largest face per
// frame, embed it. Videos with too few detected faces are skipped; a
// failure in one video does not stop the stage.
type EmbedVideosUseCase struct {
	sampler  port.FrameSampler
	detector port.FaceDetector
	embedder port.FaceEmbedder
	videos   port.VideoRepository
	seqs     port.SequenceStore
	logger   *zap.Logger
	cfg      EmbedVideosConfig
}

type EmbedVideosConfig struct {
	TempDir      string
	SampleFrames int
	MinFaces     int
}

func NewEmbedVideosUseCase(
	sampler port.FrameSampler,
	detector port.FaceDetector,
	embedder port.FaceEmbedder,
	videos port.VideoRepository,
	seqs port.SequenceStore,
	logger *zap.Logger,
	cfg EmbedVideosConfig,
) *EmbedVideosUseCase {
	return &EmbedVideosUseCase{
		sampler:  sampler,
		detector: detector,
		embedder: embedder,
		videos:   videos,
		seqs:     seqs,
		logger:   logger,
		cfg:      cfg,
	}
}

func (uc *EmbedVideosUseCase) Execute(ctx context.Context, run *entity.Run) error {
	pending, err := uc.videos.ListByRun(ctx, run.ID, entity.VideoStatusPending)
	if err != nil {
		return fmt.Errorf("list pending videos: %w", err)
	}
	if len(pending) == 0 {
		return fmt.Errorf("run has no pending videos")
	}

	log := uc.logger.With(zap.String("run_id", run.ID.String()))
	embedded := 0
	for _, video := range pending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := uc.embedVideo(ctx, run, video, log); err != nil {
			log.Error("video embedding failed",
				zap.String("video", video.Name),
				zap.Error(err),
			)
			video.MarkFailed(err.Error())
			metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
		}
		if video.Status == entity.VideoStatusEmbedded {
			embedded++
		}
		if err := uc.videos.Update(ctx, video); err != nil {
			return fmt.Errorf("update video %s: %w", video.Name, err)
		}
	}

	if embedded == 0 {
		return fmt.Errorf("no videos produced enough faces to embed")
	}

	log.Info("embedding stage finished",
		zap.Int("embedded", embedded),
		zap.Int("total", len(pending)),
	)
	return nil
}

func (uc *EmbedVideosUseCase) embedVideo(ctx context.Context, run *entity.Run, video *entity.Video, log *zap.Logger) error {
	framesDir := filepath.Join(uc.cfg.TempDir, run.ID.String(), "frames", video.ID.String())
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}
	defer os.RemoveAll(framesDir)

	result, err := uc.sampler.SampleFrames(ctx, video.Path, framesDir)
	if err != nil {
		return fmt.Errorf("sample frames: %w", err)
	}
	metrics.FramesSampledTotal.Add(float64(result.FrameCount))

	seq := entity.NewEmbeddingSequence(video.ID, video.Label, uc.embedder.Dim())
	for _, framePath := range result.FramePaths {
		region, ok, err := uc.detector.DetectLargestFace(framePath)
		if err != nil {
			return fmt.Errorf("detect face: %w", err)
		}
		if !ok {
			continue
		}

		embedding, err := uc.embedder.Embed(framePath, region)
		if err != nil {
			return fmt.Errorf("embed face: %w", err)
		}
		if err := seq.Append(embedding); err != nil {
			return err
		}
	}
	metrics.FacesDetectedTotal.Add(float64(seq.Steps))

	if seq.Steps < uc.cfg.MinFaces {
		log.Warn("too few faces detected, skipping video",
			zap.String("video", video.Name),
			zap.Int("faces", seq.Steps),
			zap.Int("min_faces", uc.cfg.MinFaces),
		)
		video.MarkSkipped(result.FrameCount, seq.Steps)
		metrics.VideosProcessedTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	faceCount := seq.Steps
	if err := seq.PadTo(uc.cfg.SampleFrames); err != nil {
		return fmt.Errorf("pad sequence: %w", err)
	}
	if err := uc.seqs.Save(ctx, run.ID, seq); err != nil {
		return fmt.Errorf("save sequence: %w", err)
	}

	video.MarkEmbedded(result.FrameCount, faceCount, result.VideoDuration)
	metrics.VideosProcessedTotal.WithLabelValues("embedded").Inc()

	log.Debug("video embedded",
		zap.String("video", video.Name),
		zap.Int("frames", result.FrameCount),
		zap.Int("faces", faceCount),
	)
	return nil
}
