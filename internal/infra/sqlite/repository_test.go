package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	runs := NewRunRepository(db)

	run := entity.NewRun("dfdc/part0.zip", "")
	require.NoError(t, runs.Create(ctx, run))

	run.MarkRunning(entity.StageEmbed)
	run.VideoCount = 12
	require.NoError(t, runs.Update(ctx, run))

	got, err := runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusRunning, got.Status)
	assert.Equal(t, entity.StageEmbed, got.Stage)
	assert.Equal(t, 12, got.VideoCount)
	assert.Equal(t, "dfdc/part0.zip", got.DatasetKey)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.Report)
}

func TestRunRepositoryStoresReport(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	runs := NewRunRepository(db)

	run := entity.NewRun("", "/data/videos.zip")
	require.NoError(t, runs.Create(ctx, run))

	run.MarkCompleted(&entity.EvalReport{
		TestCount: 10,
		Threshold: 0.5,
		Accuracy:  0.9,
		AUC:       0.95,
	})
	require.NoError(t, runs.Update(ctx, run))

	got, err := runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, got.Status)
	require.NotNil(t, got.Report)
	assert.InDelta(t, 0.9, got.Report.Accuracy, 1e-9)
	require.NotNil(t, got.CompletedAt)
}

func TestVideoRepositoryListByStatus(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	run := entity.NewRun("", "/data/videos.zip")
	videos := NewVideoRepository(db)

	a := entity.NewVideo(run.ID, "a.mp4", "/work/a.mp4", entity.LabelFake)
	b := entity.NewVideo(run.ID, "b.mp4", "/work/b.mp4", entity.LabelReal)
	require.NoError(t, videos.Create(ctx, a))
	require.NoError(t, videos.Create(ctx, b))

	a.MarkEmbedded(16, 14, 10.5)
	require.NoError(t, videos.Update(ctx, a))

	embedded, err := videos.ListByRun(ctx, run.ID, entity.VideoStatusEmbedded)
	require.NoError(t, err)
	require.Len(t, embedded, 1)
	assert.Equal(t, "a.mp4", embedded[0].Name)
	assert.Equal(t, 14, embedded[0].FaceCount)

	all, err := videos.ListByRun(ctx, run.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSequenceStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	run := entity.NewRun("", "/data/videos.zip")
	store := NewSequenceStore(db)

	video := entity.NewVideo(run.ID, "a.mp4", "/work/a.mp4", entity.LabelFake)
	seq := entity.NewEmbeddingSequence(video.ID, entity.LabelFake, 4)
	require.NoError(t, seq.Append([]float32{1, 2, 3, 4}))
	require.NoError(t, seq.Append([]float32{5, 6, 7, 8}))

	require.NoError(t, store.Save(ctx, run.ID, seq))

	seqs, err := store.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	assert.Equal(t, video.ID, seqs[0].VideoID)
	assert.Equal(t, entity.LabelFake, seqs[0].Label)
	assert.Equal(t, 2, seqs[0].Steps)
	assert.Equal(t, seq.Data, seqs[0].Data)
}

func TestSequenceStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	run := entity.NewRun("", "/data/videos.zip")
	store := NewSequenceStore(db)

	seq := &entity.EmbeddingSequence{Label: "BOGUS", Steps: 1, Dim: 2, Data: []float32{1, 2}}
	assert.Error(t, store.Save(ctx, run.ID, seq))
}
