package usecase

import (
	"fmt"
	"math/rand"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
)

// SplitDataset shuffles the sequences with the given seed and splits them
// into train and test sets. The split is deterministic for a seed, so the
// train and evaluate stages recover the same partition independently.
func SplitDataset(seqs []*entity.EmbeddingSequence, trainFraction float64, seed int64) (train, test []*entity.EmbeddingSequence, err error) {
	if len(seqs) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 sequences to split, have %d", len(seqs))
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, fmt.Errorf("train fraction %v not in (0, 1)", trainFraction)
	}

	shuffled := make([]*entity.EmbeddingSequence, len(seqs))
	copy(shuffled, seqs)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * trainFraction)
	if cut == 0 {
		cut = 1
	}
	if cut == len(shuffled) {
		cut = len(shuffled) - 1
	}
	train, test = shuffled[:cut], shuffled[cut:]

	if !hasBothClasses(train) {
		return nil, nil, fmt.Errorf("train split is missing a class, %d samples total", len(seqs))
	}
	return train, test, nil
}

func hasBothClasses(seqs []*entity.EmbeddingSequence) bool {
	var real, fake bool
	for _, s := range seqs {
		switch s.Label {
		case entity.LabelReal:
			real = true
		case entity.LabelFake:
			fake = true
		}
	}
	return real && fake
}
