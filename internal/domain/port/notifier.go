package port

import (
	"context"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
)

type RunNotifier interface {
	NotifyCompletion(ctx context.Context, to, runID string, report *entity.EvalReport) error
	NotifyFailure(ctx context.Context, to, runID, stage, errorMsg string) error
}
