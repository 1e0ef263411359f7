package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

const reportFileName = "report.json"

// EvaluateModelUseCase scores the held-out split with the trained model
// and writes the metrics report.
type EvaluateModelUseCase struct {
	classifier port.SequenceClassifier
	seqs       port.SequenceStore
	runs       port.RunRepository
	storage    port.DatasetStorage
	logger     *zap.Logger
	cfg        SplitConfig
}

func NewEvaluateModelUseCase(
	classifier port.SequenceClassifier,
	seqs port.SequenceStore,
	runs port.RunRepository,
	storage port.DatasetStorage,
	logger *zap.Logger,
	cfg SplitConfig,
) *EvaluateModelUseCase {
	return &EvaluateModelUseCase{
		classifier: classifier,
		seqs:       seqs,
		runs:       runs,
		storage:    storage,
		logger:     logger,
		cfg:        cfg,
	}
}

func (uc *EvaluateModelUseCase) Execute(ctx context.Context, run *entity.Run) error {
	log := uc.logger.With(zap.String("run_id", run.ID.String()))

	seqs, err := uc.seqs.ListByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("load sequences: %w", err)
	}

	_, test, err := SplitDataset(seqs, uc.cfg.TrainFraction, uc.cfg.Seed)
	if err != nil {
		return err
	}

	modelPath := filepath.Join(uc.cfg.ArtifactDir, run.ID.String(), modelFileName)
	if err := uc.classifier.Load(modelPath); err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	scores, err := uc.classifier.Scores(test)
	if err != nil {
		return fmt.Errorf("score test split: %w", err)
	}

	labels := make([]entity.Label, len(test))
	for i, s := range test {
		labels[i] = s.Label
	}
	report := BuildReport(scores, labels, uc.cfg.Threshold)

	reportPath := filepath.Join(uc.cfg.ArtifactDir, run.ID.String(), reportFileName)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if uc.storage != nil {
		reportKey := fmt.Sprintf("%s/%s", run.ID.String(), reportFileName)
		if err := uploadFile(ctx, uc.storage, reportPath, reportKey, "application/json"); err != nil {
			return err
		}
		run.ReportKey = reportKey
	}

	run.Report = report
	if err := uc.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	log.Info("evaluation finished",
		zap.Int("test_count", report.TestCount),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("precision", report.Precision),
		zap.Float64("recall", report.Recall),
		zap.Float64("f1", report.F1),
		zap.Float64("auc", report.AUC),
	)
	return nil
}

// BuildReport computes confusion-matrix metrics at the threshold plus ROC
// AUC over the raw scores. Fake is the positive class.
func BuildReport(scores []float32, labels []entity.Label, threshold float64) *entity.EvalReport {
	report := &entity.EvalReport{
		TestCount: len(scores),
		Threshold: threshold,
	}

	for i, score := range scores {
		predictedFake := float64(score) >= threshold
		actualFake := labels[i] == entity.LabelFake
		switch {
		case predictedFake && actualFake:
			report.TruePositives++
		case predictedFake && !actualFake:
			report.FalsePositives++
		case !predictedFake && actualFake:
			report.FalseNegatives++
		default:
			report.TrueNegatives++
		}
	}

	total := float64(len(scores))
	if total > 0 {
		report.Accuracy = float64(report.TruePositives+report.TrueNegatives) / total
	}
	if report.TruePositives+report.FalsePositives > 0 {
		report.Precision = float64(report.TruePositives) / float64(report.TruePositives+report.FalsePositives)
	}
	if report.TruePositives+report.FalseNegatives > 0 {
		report.Recall = float64(report.TruePositives) / float64(report.TruePositives+report.FalseNegatives)
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}
	report.AUC = rocAUC(scores, labels)

	return report
}

// rocAUC computes ROC AUC with fake as the positive class. Returns 0 when
// only one class is present.
func rocAUC(scores []float32, labels []entity.Label) float64 {
	type sample struct {
		score float64
		fake  bool
	}

	samples := make([]sample, len(scores))
	var positives, negatives int
	for i, s := range scores {
		fake := labels[i] == entity.LabelFake
		samples[i] = sample{score: float64(s), fake: fake}
		if fake {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].score < samples[j].score })

	ys := make([]float64, len(samples))
	classes := make([]bool, len(samples))
	for i, s := range samples {
		ys[i] = s.score
		classes[i] = s.fake
	}

	tpr, fpr, _ := stat.ROC(nil, ys, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
