package port

import (
	"context"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/google/uuid"
)

type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	Update(ctx context.Context, run *entity.Run) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Run, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	Update(ctx context.Context, video *entity.Video) error
	ListByRun(ctx context.Context, runID uuid.UUID, status entity.VideoStatus) ([]*entity.Video, error)
}

// SequenceStore persists per-video embedding sequences between the embed
// stage and training.
type SequenceStore interface {
	Save(ctx context.Context, runID uuid.UUID, seq *entity.EmbeddingSequence) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*entity.EmbeddingSequence, error)
}
