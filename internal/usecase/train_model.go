package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"go.uber.org/zap"
)

const modelFileName = "model.gob"

// TrainModelUseCase fits the sequence classifier on the run's train split
// and persists the model artifact.
type TrainModelUseCase struct {
	classifier port.SequenceClassifier
	seqs       port.SequenceStore
	runs       port.RunRepository
	storage    port.DatasetStorage
	logger     *zap.Logger
	cfg        SplitConfig
}

// SplitConfig carries the deterministic split parameters shared by the
// train and evaluate stages.
type SplitConfig struct {
	ArtifactDir   string
	TrainFraction float64
	Seed          int64
	Threshold     float64
}

func NewTrainModelUseCase(
	classifier port.SequenceClassifier,
	seqs port.SequenceStore,
	runs port.RunRepository,
	storage port.DatasetStorage,
	logger *zap.Logger,
	cfg SplitConfig,
) *TrainModelUseCase {
	return &TrainModelUseCase{
		classifier: classifier,
		seqs:       seqs,
		runs:       runs,
		storage:    storage,
		logger:     logger,
		cfg:        cfg,
	}
}

func (uc *TrainModelUseCase) Execute(ctx context.Context, run *entity.Run) error {
	log := uc.logger.With(zap.String("run_id", run.ID.String()))

	seqs, err := uc.seqs.ListByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load sequences: %w", err)
	}

	train, test, err := SplitDataset(seqs, uc.cfg.TrainFraction, uc.cfg.Seed)
	if err != nil {
		return err
	}
	log.Info("dataset split",
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
	)

	losses, err := uc.classifier.Fit(ctx, train)
	if err != nil {
		return fmt.Errorf("fit classifier: %w", err)
	}
	if len(losses) == 0 {
		return fmt.Errorf("classifier ran no epochs")
	}

	runDir := filepath.Join(uc.cfg.ArtifactDir, run.ID.String())
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	modelPath := filepath.Join(runDir, modelFileName)
	if err := uc.classifier.Save(modelPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	modelKey := fmt.Sprintf("%s/%s", run.ID.String(), modelFileName)
	if uc.storage != nil {
		if err := uploadFile(ctx, uc.storage, modelPath, modelKey, "application/octet-stream"); err != nil {
			return err
		}
		run.ModelKey = modelKey
	}

	run.TrainCount = len(train)
	run.TestCount = len(test)
	if err := uc.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	log.Info("training finished",
		zap.Int("epochs", len(losses)),
		zap.Float64("final_loss", losses[len(losses)-1]),
		zap.String("model_path", modelPath),
	)
	return nil
}

func uploadFile(ctx context.Context, storage port.DatasetStorage, path, key, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact %s: %w", path, err)
	}

	if err := storage.UploadArtifact(ctx, key, f, stat.Size(), contentType); err != nil {
		return fmt.Errorf("upload artifact %s: %w", key, err)
	}
	return nil
}
