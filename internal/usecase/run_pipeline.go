package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Stage is one step of the pipeline run.
type Stage interface {
	Execute(ctx context.Context, run *entity.Run) error
}

// RunPipelineUseCase chains prepare, embed, train and evaluate under one
// run record, with a span and duration histogram per stage.
type RunPipelineUseCase struct {
	runs     port.RunRepository
	notifier port.RunNotifier
	notifyTo string
	logger   *zap.Logger
	stages   []namedStage
}

type namedStage struct {
	name  string
	stage Stage
}

func NewRunPipelineUseCase(
	runs port.RunRepository,
	notifier port.RunNotifier,
	notifyTo string,
	logger *zap.Logger,
	prepare, embed, train, evaluate Stage,
) *RunPipelineUseCase {
	return &RunPipelineUseCase{
		runs:     runs,
		notifier: notifier,
		notifyTo: notifyTo,
		logger:   logger,
		stages: []namedStage{
			{entity.StagePrepare, prepare},
			{entity.StageEmbed, embed},
			{entity.StageTrain, train},
			{entity.StageEvaluate, evaluate},
		},
	}
}

func (uc *RunPipelineUseCase) Execute(ctx context.Context, run *entity.Run) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "RunPipelineUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", run.ID.String()))

	log := uc.logger.With(zap.String("run_id", run.ID.String()))

	if err := uc.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("create run record: %w", err)
	}

	totalTimer := time.Now()
	for _, s := range uc.stages {
		run.MarkRunning(s.name)
		if err := uc.runs.Update(ctx, run); err != nil {
			return fmt.Errorf("update run to stage %s: %w", s.name, err)
		}

		log.Info("stage starting", zap.String("stage", s.name))
		stageTimer := time.Now()

		stageCtx, stageSpan := tracer.Start(ctx, s.name)
		err := s.stage.Execute(stageCtx, run)
		stageSpan.End()
		metrics.StageDuration.WithLabelValues(s.name).Observe(time.Since(stageTimer).Seconds())

		if err != nil {
			return uc.handleFailure(ctx, run, s.name, err, log)
		}
		log.Info("stage finished",
			zap.String("stage", s.name),
			zap.Duration("duration", time.Since(stageTimer)),
		)
	}

	run.MarkCompleted(run.Report)
	if err := uc.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to COMPLETED: %w", err)
	}
	metrics.RunsTotal.WithLabelValues("completed").Inc()

	if uc.notifier != nil && uc.notifyTo != "" && run.Report != nil {
		if err := uc.notifier.NotifyCompletion(ctx, uc.notifyTo, run.ID.String(), run.Report); err != nil {
			log.Warn("completion notification failed", zap.Error(err))
		}
	}

	log.Info("run completed",
		zap.Duration("duration", time.Since(totalTimer)),
		zap.Int("videos", run.VideoCount),
		zap.Int("train", run.TrainCount),
		zap.Int("test", run.TestCount),
	)
	return nil
}

func (uc *RunPipelineUseCase) handleFailure(ctx context.Context, run *entity.Run, stage string, stageErr error, log *zap.Logger) error {
	run.MarkFailed(stageErr.Error())
	if err := uc.runs.Update(ctx, run); err != nil {
		log.Error("failed to update run to FAILED", zap.Error(err))
	}
	metrics.RunsTotal.WithLabelValues("failed").Inc()

	if uc.notifier != nil && uc.notifyTo != "" {
		if err := uc.notifier.NotifyFailure(ctx, uc.notifyTo, run.ID.String(), stage, stageErr.Error()); err != nil {
			log.Warn("failure notification failed", zap.Error(err))
		}
	}

	return fmt.Errorf("stage %s: %w", stage, stageErr)
}
