package port

import (
	"context"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
)

// SequenceClassifier models a sequence of face embeddings as real or fake.
// Fit trains on labeled sequences and returns the mean loss per epoch;
// Scores returns the fake probability per sequence.
type SequenceClassifier interface {
	Fit(ctx context.Context, seqs []*entity.EmbeddingSequence) ([]float64, error)
	Scores(seqs []*entity.EmbeddingSequence) ([]float32, error)
	Save(path string) error
	Load(path string) error
}
