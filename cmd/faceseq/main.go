package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/archive"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/config"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/email"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/ffmpeg"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/gru"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/metrics"
	miniostorage "github.com/SanjeevDurge/Deepfake-Detection/internal/infra/minio"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/sqlite"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/tracing"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/vision"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/usecase"
	"github.com/SanjeevDurge/Deepfake-Detection/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "faceseq",
		Short:         "Deepfake video classification pipeline",
		Long:          "faceseq classifies short videos as real or fake by embedding detected faces per frame and modeling the sequence with a GRU.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(),
		newPrepareCmd(),
		newStageCmd("embed", "Sample frames, detect faces and store embedding sequences", entity.StageEmbed),
		newStageCmd("train", "Train the sequence classifier on the run's embeddings", entity.StageTrain),
		newStageCmd("evaluate", "Evaluate the trained model on the held-out split", entity.StageEvaluate),
	)
	return root
}

// app holds everything a command needs; vision adapters are built only by
// the stages that use them.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *sql.DB
	runs    *sqlite.RunRepository
	videos  *sqlite.VideoRepository
	seqs    *sqlite.SequenceStore
	storage port.DatasetStorage
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		runs:   sqlite.NewRunRepository(db),
		videos: sqlite.NewVideoRepository(db),
		seqs:   sqlite.NewSequenceStore(db),
	}

	if cfg.MinIOEndpoint != "" {
		storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
			Endpoint:       cfg.MinIOEndpoint,
			AccessKey:      cfg.MinIOAccessKey,
			SecretKey:      cfg.MinIOSecretKey,
			UseSSL:         cfg.MinIOUseSSL,
			DatasetBucket:  cfg.MinIODatasetBucket,
			ArtifactBucket: cfg.MinIOArtifactBucket,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create object storage: %w", err)
		}
		if err := storage.EnsureBuckets(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure buckets: %w", err)
		}
		a.storage = storage
	}

	return a, nil
}

func (a *app) Close() {
	a.db.Close()
	a.log.Sync()
}

func (a *app) notifier() (port.RunNotifier, string) {
	if a.cfg.SMTPHost == "" || a.cfg.NotificationTo == "" {
		return nil, ""
	}
	return email.NewSMTPNotifier(a.cfg.SMTPHost, a.cfg.SMTPPort, a.cfg.SMTPFrom, a.log), a.cfg.NotificationTo
}

func (a *app) splitConfig() usecase.SplitConfig {
	return usecase.SplitConfig{
		ArtifactDir:   a.cfg.ArtifactDir,
		TrainFraction: a.cfg.TrainFraction,
		Seed:          a.cfg.Seed,
		Threshold:     a.cfg.Threshold,
	}
}

func (a *app) classifier() *gru.Network {
	return gru.New(gru.Config{
		InputSize:  a.cfg.EmbedSize,
		HiddenSize: a.cfg.GRUHidden,
		Steps:      a.cfg.SampleFrames,
		BatchSize:  a.cfg.BatchSize,
		Epochs:     a.cfg.Epochs,
		LearnRate:  a.cfg.LearnRate,
		Seed:       a.cfg.Seed,
	}, a.log)
}

func (a *app) prepareUseCase() *usecase.PrepareDatasetUseCase {
	return usecase.NewPrepareDatasetUseCase(
		a.storage, archive.NewUnzipper(), a.runs, a.videos, a.log, a.cfg.WorkDir,
	)
}

func (a *app) embedUseCase() (*usecase.EmbedVideosUseCase, func(), error) {
	detector, err := vision.NewCascadeDetector(a.cfg.CascadePath, a.cfg.MinFaceSize, a.cfg.FaceMargin)
	if err != nil {
		return nil, nil, fmt.Errorf("init face detector: %w", err)
	}
	embedder, err := vision.NewDNNEmbedder(a.cfg.EmbedModelPath, a.cfg.EmbedInput, a.cfg.EmbedSize)
	if err != nil {
		detector.Close()
		return nil, nil, fmt.Errorf("init face embedder: %w", err)
	}

	sampler := ffmpeg.NewSampler(a.cfg.SampleFrames, a.cfg.FrameFormat, a.log)
	uc := usecase.NewEmbedVideosUseCase(
		sampler, detector, embedder, a.videos, a.seqs, a.log,
		usecase.EmbedVideosConfig{
			TempDir:      a.cfg.WorkDir,
			SampleFrames: a.cfg.SampleFrames,
			MinFaces:     a.cfg.MinFaces,
		},
	)
	cleanup := func() {
		embedder.Close()
		detector.Close()
	}
	return uc, cleanup, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: prepare, embed, train, evaluate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.cfg.OTLPEndpoint != "" {
				tp, err := tracing.InitTracer(ctx, a.cfg.OTLPEndpoint)
				if err != nil {
					a.log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
				} else {
					defer tp.Shutdown(ctx)
				}
			}

			metricsSrv := metrics.StartMetricsServer(ctx, a.cfg.MetricsPort, a.log)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				metricsSrv.Shutdown(shutdownCtx)
			}()

			embed, cleanup, err := a.embedUseCase()
			if err != nil {
				return err
			}
			defer cleanup()

			notifier, notifyTo := a.notifier()
			pipeline := usecase.NewRunPipelineUseCase(
				a.runs, notifier, notifyTo, a.log,
				a.prepareUseCase(),
				embed,
				usecase.NewTrainModelUseCase(a.classifier(), a.seqs, a.runs, a.storage, a.log, a.splitConfig()),
				usecase.NewEvaluateModelUseCase(a.classifier(), a.seqs, a.runs, a.storage, a.log, a.splitConfig()),
			)

			run := entity.NewRun(a.cfg.DatasetKey, a.cfg.DatasetArchive)
			a.log.Info("starting pipeline run", zap.String("run_id", run.ID.String()))
			if err := pipeline.Execute(ctx, run); err != nil {
				return err
			}

			cmd.Printf("run %s completed: accuracy=%.4f auc=%.4f\n",
				run.ID, run.Report.Accuracy, run.Report.AUC)
			return nil
		},
	}
}

func newPrepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Extract the dataset archive and register its labeled videos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			run := entity.NewRun(a.cfg.DatasetKey, a.cfg.DatasetArchive)
			if err := a.runs.Create(ctx, run); err != nil {
				return fmt.Errorf("create run record: %w", err)
			}

			run.MarkRunning(entity.StagePrepare)
			if err := a.prepareUseCase().Execute(ctx, run); err != nil {
				run.MarkFailed(err.Error())
				a.runs.Update(ctx, run)
				return err
			}

			cmd.Printf("run %s prepared: %d videos\n", run.ID, run.VideoCount)
			return nil
		},
	}
}

// newStageCmd builds the embed/train/evaluate commands, which resume an
// existing run by ID.
func newStageCmd(use, short, stage string) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			id, err := uuid.Parse(runID)
			if err != nil {
				return fmt.Errorf("parse run id: %w", err)
			}
			run, err := a.runs.FindByID(ctx, id)
			if err != nil {
				return err
			}

			var uc usecase.Stage
			switch stage {
			case entity.StageEmbed:
				embed, cleanup, err := a.embedUseCase()
				if err != nil {
					return err
				}
				defer cleanup()
				uc = embed
			case entity.StageTrain:
				uc = usecase.NewTrainModelUseCase(a.classifier(), a.seqs, a.runs, a.storage, a.log, a.splitConfig())
			case entity.StageEvaluate:
				uc = usecase.NewEvaluateModelUseCase(a.classifier(), a.seqs, a.runs, a.storage, a.log, a.splitConfig())
			}

			run.MarkRunning(stage)
			if err := a.runs.Update(ctx, run); err != nil {
				return fmt.Errorf("update run: %w", err)
			}
			if err := uc.Execute(ctx, run); err != nil {
				run.MarkFailed(err.Error())
				a.runs.Update(ctx, run)
				return err
			}

			if stage == entity.StageEvaluate && run.Report != nil {
				run.MarkCompleted(run.Report)
				if err := a.runs.Update(ctx, run); err != nil {
					return fmt.Errorf("update run: %w", err)
				}
				cmd.Printf("run %s evaluated: accuracy=%.4f auc=%.4f\n",
					run.ID, run.Report.Accuracy, run.Report.AUC)
			} else {
				cmd.Printf("run %s: stage %s finished\n", run.ID, stage)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID (from prepare)")
	cmd.MarkFlagRequired("run")
	return cmd
}
