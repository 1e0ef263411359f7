package entity

import (
	"time"

	"github.com/google/uuid"
)

type Label string

const (
	LabelReal Label = "REAL"
	LabelFake Label = "FAKE"
)

// Target is the classifier target for the label: fake videos are the
// positive class.
func (l Label) Target() float32 {
	if l == LabelFake {
		return 1
	}
	return 0
}

func (l Label) Valid() bool {
	return l == LabelReal || l == LabelFake
}

type VideoStatus string

const (
	VideoStatusPending  VideoStatus = "PENDING"
	VideoStatusEmbedded VideoStatus = "EMBEDDED"
	VideoStatusSkipped  VideoStatus = "SKIPPED"
	VideoStatusFailed   VideoStatus = "FAILED"
)

// Video is one labeled clip inside a run.
type Video struct {
	ID           uuid.UUID
	RunID        uuid.UUID
	Name         string
	Path         string
	Label        Label
	Status       VideoStatus
	FrameCount   int
	FaceCount    int
	Duration     float64
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewVideo(runID uuid.UUID, name, path string, label Label) *Video {
	now := time.Now().UTC()
	return &Video{
		ID:        uuid.New(),
		RunID:     runID,
		Name:      name,
		Path:      path,
		Label:     label,
		Status:    VideoStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (v *Video) MarkEmbedded(frameCount, faceCount int, duration float64) {
	v.Status = VideoStatusEmbedded
	v.FrameCount = frameCount
	v.FaceCount = faceCount
	v.Duration = duration
	v.UpdatedAt = time.Now().UTC()
}

// MarkSkipped records a video excluded from the dataset because too few
// faces were detected across its sampled frames.
func (v *Video) MarkSkipped(frameCount, faceCount int) {
	v.Status = VideoStatusSkipped
	v.FrameCount = frameCount
	v.FaceCount = faceCount
	v.UpdatedAt = time.Now().UTC()
}

func (v *Video) MarkFailed(errMsg string) {
	v.Status = VideoStatusFailed
	v.ErrorMessage = errMsg
	v.UpdatedAt = time.Now().UTC()
}
