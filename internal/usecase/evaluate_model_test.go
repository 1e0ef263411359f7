package usecase

import (
	"testing"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestBuildReportPerfectClassifier(t *testing.T) {
	scores := []float32{0.9, 0.8, 0.1, 0.2}
	labels := []entity.Label{entity.LabelFake, entity.LabelFake, entity.LabelReal, entity.LabelReal}

	report := BuildReport(scores, labels, 0.5)

	assert.Equal(t, 4, report.TestCount)
	assert.Equal(t, 2, report.TruePositives)
	assert.Equal(t, 2, report.TrueNegatives)
	assert.Equal(t, 0, report.FalsePositives)
	assert.Equal(t, 0, report.FalseNegatives)
	assert.InDelta(t, 1.0, report.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, report.Precision, 1e-9)
	assert.InDelta(t, 1.0, report.Recall, 1e-9)
	assert.InDelta(t, 1.0, report.F1, 1e-9)
	assert.InDelta(t, 1.0, report.AUC, 1e-9)
}

func TestBuildReportAllWrong(t *testing.T) {
	scores := []float32{0.1, 0.9}
	labels := []entity.Label{entity.LabelFake, entity.LabelReal}

	report := BuildReport(scores, labels, 0.5)

	assert.Equal(t, 0, report.TruePositives)
	assert.Equal(t, 1, report.FalsePositives)
	assert.Equal(t, 1, report.FalseNegatives)
	assert.InDelta(t, 0.0, report.Accuracy, 1e-9)
	assert.InDelta(t, 0.0, report.Precision, 1e-9)
	assert.InDelta(t, 0.0, report.Recall, 1e-9)
	assert.InDelta(t, 0.0, report.F1, 1e-9)
	assert.InDelta(t, 0.0, report.AUC, 1e-9)
}

func TestBuildReportMixed(t *testing.T) {
	scores := []float32{0.9, 0.4, 0.6, 0.1}
	labels := []entity.Label{entity.LabelFake, entity.LabelFake, entity.LabelReal, entity.LabelReal}

	report := BuildReport(scores, labels, 0.5)

	// One fake caught, one missed; one real flagged, one cleared.
	assert.Equal(t, 1, report.TruePositives)
	assert.Equal(t, 1, report.FalseNegatives)
	assert.Equal(t, 1, report.FalsePositives)
	assert.Equal(t, 1, report.TrueNegatives)
	assert.InDelta(t, 0.5, report.Accuracy, 1e-9)
	assert.InDelta(t, 0.5, report.Precision, 1e-9)
	assert.InDelta(t, 0.5, report.Recall, 1e-9)
	assert.InDelta(t, 0.5, report.F1, 1e-9)
}

func TestBuildReportSingleClassAUC(t *testing.T) {
	scores := []float32{0.9, 0.8}
	labels := []entity.Label{entity.LabelFake, entity.LabelFake}

	report := BuildReport(scores, labels, 0.5)
	assert.InDelta(t, 0.0, report.AUC, 1e-9)
	assert.InDelta(t, 1.0, report.Recall, 1e-9)
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, nil, 0.5)
	assert.Equal(t, 0, report.TestCount)
	assert.InDelta(t, 0.0, report.Accuracy, 1e-9)
}
