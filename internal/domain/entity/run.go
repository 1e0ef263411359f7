package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// Pipeline stage names, used for run bookkeeping, tracing spans and metrics labels.
const (
	StagePrepare  = "prepare"
	StageEmbed    = "embed"
	StageTrain    = "train"
	StageEvaluate = "evaluate"
)

// Run is one end-to-end pass over a labeled dataset: extraction, face
// embedding, training and evaluation all share the run's ID and work dir.
type Run struct {
	ID           uuid.UUID
	DatasetKey   string
	ArchivePath  string
	Status       RunStatus
	Stage        string
	VideoCount   int
	TrainCount   int
	TestCount    int
	ModelKey     string
	ReportKey    string
	Report       *EvalReport
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewRun(datasetKey, archivePath string) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:          uuid.New(),
		DatasetKey:  datasetKey,
		ArchivePath: archivePath,
		Status:      RunStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *Run) MarkRunning(stage string) {
	r.Status = RunStatusRunning
	r.Stage = stage
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) MarkCompleted(report *EvalReport) {
	now := time.Now().UTC()
	r.Status = RunStatusCompleted
	r.Report = report
	r.UpdatedAt = now
	r.CompletedAt = &now
}

func (r *Run) MarkFailed(errMsg string) {
	r.Status = RunStatusFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now().UTC()
}
