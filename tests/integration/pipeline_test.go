package integration

import (
	"archive/zip"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/archive"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/gru"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/sqlite"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/usecase"
	"github.com/SanjeevDurge/Deepfake-Detection/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFrames = 8
	testDim    = 16
)

// stubSampler pretends every video has duration 4s and yields testFrames
// frame paths. The frame files are never read by the pipeline, only their
// paths travel through the detector and embedder.
type stubSampler struct{}

func (stubSampler) SampleFrames(_ context.Context, videoPath, outputDir string) (*port.FrameSampleResult, error) {
	paths := make([]string, testFrames)
	for i := range paths {
		paths[i] = filepath.Join(outputDir, fmt.Sprintf("%s.frame-%02d.png", filepath.Base(videoPath), i))
	}
	// Label leaks through the directory name so the embedder stub can
	// produce separable sequences.
	if strings.Contains(videoPath, string(os.PathSeparator)+"fake"+string(os.PathSeparator)) {
		for i := range paths {
			paths[i] += ".fake"
		}
	}
	return &port.FrameSampleResult{FramePaths: paths, FrameCount: testFrames, VideoDuration: 4.0}, nil
}

type stubDetector struct{}

func (stubDetector) DetectLargestFace(string) (image.Rectangle, bool, error) {
	return image.Rect(10, 10, 90, 90), true, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(framePath string, _ image.Rectangle) ([]float32, error) {
	val := float32(-0.8)
	if strings.HasSuffix(framePath, ".fake") {
		val = 0.8
	}
	emb := make([]float32, testDim)
	for i := range emb {
		emb[i] = val
	}
	return emb, nil
}

func (stubEmbedder) Dim() int { return testDim }

func writeDatasetArchive(t *testing.T, dir string) string {
	t.Helper()

	archivePath := filepath.Join(dir, "dataset.zip")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for i := 0; i < 5; i++ {
		for _, label := range []string{"real", "fake"} {
			w, err := zw.Create(fmt.Sprintf("%s/video-%s-%d.mp4", label, label, i))
			require.NoError(t, err)
			_, err = w.Write([]byte("not a real video"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return archivePath
}

func TestPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log, err := logger.New("error")
	require.NoError(t, err)

	workDir := t.TempDir()
	artifactDir := t.TempDir()
	archivePath := writeDatasetArchive(t, t.TempDir())

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "faceseq.db"))
	require.NoError(t, err)
	defer db.Close()

	runs := sqlite.NewRunRepository(db)
	videos := sqlite.NewVideoRepository(db)
	seqs := sqlite.NewSequenceStore(db)

	splitCfg := usecase.SplitConfig{
		ArtifactDir:   artifactDir,
		TrainFraction: 0.8,
		Seed:          42,
		Threshold:     0.5,
	}
	classifierCfg := gru.Config{
		InputSize:  testDim,
		HiddenSize: 8,
		Steps:      testFrames,
		BatchSize:  8,
		Epochs:     20,
		LearnRate:  0.05,
		Seed:       42,
	}

	pipeline := usecase.NewRunPipelineUseCase(
		runs, nil, "", log,
		usecase.NewPrepareDatasetUseCase(nil, archive.NewUnzipper(), runs, videos, log, workDir),
		usecase.NewEmbedVideosUseCase(stubSampler{}, stubDetector{}, stubEmbedder{}, videos, seqs, log,
			usecase.EmbedVideosConfig{TempDir: workDir, SampleFrames: testFrames, MinFaces: 4}),
		usecase.NewTrainModelUseCase(gru.New(classifierCfg, log), seqs, runs, nil, log, splitCfg),
		usecase.NewEvaluateModelUseCase(gru.New(classifierCfg, log), seqs, runs, nil, log, splitCfg),
	)

	run := entity.NewRun("", archivePath)
	require.NoError(t, pipeline.Execute(ctx, run))

	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, 10, run.VideoCount)
	assert.Equal(t, 8, run.TrainCount)
	assert.Equal(t, 2, run.TestCount)

	require.NotNil(t, run.Report)
	assert.Equal(t, 2, run.Report.TestCount)
	assert.GreaterOrEqual(t, run.Report.Accuracy, 0.0)
	assert.LessOrEqual(t, run.Report.Accuracy, 1.0)
	assert.Equal(t, 2, run.Report.TruePositives+run.Report.TrueNegatives+
		run.Report.FalsePositives+run.Report.FalseNegatives)

	// Artifacts land on disk even without object storage configured.
	assert.FileExists(t, filepath.Join(artifactDir, run.ID.String(), "model.gob"))
	assert.FileExists(t, filepath.Join(artifactDir, run.ID.String(), "report.json"))

	// The run record survives a fresh read, report included.
	stored, err := runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, stored.Status)
	require.NotNil(t, stored.Report)
	assert.InDelta(t, run.Report.Accuracy, stored.Report.Accuracy, 1e-9)

	embedded, err := videos.ListByRun(ctx, run.ID, entity.VideoStatusEmbedded)
	require.NoError(t, err)
	assert.Len(t, embedded, 10)
}
