package usecase

import (
	"testing"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSequences(realCount, fakeCount int) []*entity.EmbeddingSequence {
	var seqs []*entity.EmbeddingSequence
	add := func(label entity.Label, count int) {
		for i := 0; i < count; i++ {
			seq := entity.NewEmbeddingSequence(uuid.New(), label, 2)
			seq.Append([]float32{1, 2})
			seqs = append(seqs, seq)
		}
	}
	add(entity.LabelReal, realCount)
	add(entity.LabelFake, fakeCount)
	return seqs
}

func TestSplitDatasetDeterministic(t *testing.T) {
	seqs := makeSequences(10, 10)

	train1, test1, err := SplitDataset(seqs, 0.8, 42)
	require.NoError(t, err)
	train2, test2, err := SplitDataset(seqs, 0.8, 42)
	require.NoError(t, err)

	assert.Equal(t, 16, len(train1))
	assert.Equal(t, 4, len(test1))
	for i := range train1 {
		assert.Equal(t, train1[i].VideoID, train2[i].VideoID)
	}
	for i := range test1 {
		assert.Equal(t, test1[i].VideoID, test2[i].VideoID)
	}
}

func TestSplitDatasetDifferentSeeds(t *testing.T) {
	seqs := makeSequences(20, 20)

	_, test1, err := SplitDataset(seqs, 0.8, 1)
	require.NoError(t, err)
	_, test2, err := SplitDataset(seqs, 0.8, 2)
	require.NoError(t, err)

	same := true
	for i := range test1 {
		if test1[i].VideoID != test2[i].VideoID {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should produce different partitions")
}

func TestSplitDatasetDoesNotMutateInput(t *testing.T) {
	seqs := makeSequences(5, 5)
	first := seqs[0].VideoID

	_, _, err := SplitDataset(seqs, 0.8, 42)
	require.NoError(t, err)
	assert.Equal(t, first, seqs[0].VideoID)
}

func TestSplitDatasetErrors(t *testing.T) {
	tests := []struct {
		name     string
		seqs     []*entity.EmbeddingSequence
		fraction float64
	}{
		{"too few sequences", makeSequences(1, 0), 0.8},
		{"fraction zero", makeSequences(5, 5), 0},
		{"fraction one", makeSequences(5, 5), 1},
		{"single class", makeSequences(10, 0), 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitDataset(tt.seqs, tt.fraction, 42)
			assert.Error(t, err)
		})
	}
}

func TestSplitDatasetAlwaysLeavesTestSamples(t *testing.T) {
	// A high fraction on a small set must still leave a held-out sample.
	seqs := makeSequences(2, 2)
	train, test, err := SplitDataset(seqs, 0.99, 7)
	if err != nil {
		// A tiny set may end up with one class in train; that error is
		// acceptable, an empty test split is not.
		return
	}
	assert.NotEmpty(t, test)
	assert.Equal(t, len(seqs), len(train)+len(test))
}
