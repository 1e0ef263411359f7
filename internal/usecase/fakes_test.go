package usecase

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	"github.com/google/uuid"
)

type fakeRunRepo struct {
	runs map[uuid.UUID]*entity.Run
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[uuid.UUID]*entity.Run)}
}

func (r *fakeRunRepo) Create(_ context.Context, run *entity.Run) error {
	r.runs[run.ID] = run
	return nil
}

func (r *fakeRunRepo) Update(_ context.Context, run *entity.Run) error {
	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *fakeRunRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return run, nil
}

type fakeVideoRepo struct {
	videos []*entity.Video
}

func (r *fakeVideoRepo) Create(_ context.Context, v *entity.Video) error {
	r.videos = append(r.videos, v)
	return nil
}

func (r *fakeVideoRepo) Update(_ context.Context, v *entity.Video) error {
	for i, existing := range r.videos {
		if existing.ID == v.ID {
			r.videos[i] = v
			return nil
		}
	}
	return fmt.Errorf("video %s not found", v.ID)
}

func (r *fakeVideoRepo) ListByRun(_ context.Context, runID uuid.UUID, status entity.VideoStatus) ([]*entity.Video, error) {
	var out []*entity.Video
	for _, v := range r.videos {
		if v.RunID == runID && (status == "" || v.Status == status) {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeSeqStore struct {
	seqs map[uuid.UUID][]*entity.EmbeddingSequence
}

func newFakeSeqStore() *fakeSeqStore {
	return &fakeSeqStore{seqs: make(map[uuid.UUID][]*entity.EmbeddingSequence)}
}

func (s *fakeSeqStore) Save(_ context.Context, runID uuid.UUID, seq *entity.EmbeddingSequence) error {
	if err := seq.Validate(); err != nil {
		return err
	}
	s.seqs[runID] = append(s.seqs[runID], seq)
	return nil
}

func (s *fakeSeqStore) ListByRun(_ context.Context, runID uuid.UUID) ([]*entity.EmbeddingSequence, error) {
	return s.seqs[runID], nil
}

// fakeSampler writes frameCount empty frame files per video.
type fakeSampler struct {
	frameCount int
	err        error
}

func (f *fakeSampler) SampleFrames(_ context.Context, _ string, outputDir string) (*port.FrameSampleResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	var paths []string
	for i := 0; i < f.frameCount; i++ {
		p := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.png", i+1))
		if err := os.WriteFile(p, nil, 0644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return &port.FrameSampleResult{FramePaths: paths, FrameCount: len(paths), VideoDuration: 10}, nil
}

// flakySampler fails its first call and delegates afterwards.
type flakySampler struct {
	failFirst bool
	inner     *fakeSampler
}

func (f *flakySampler) SampleFrames(ctx context.Context, videoPath, outputDir string) (*port.FrameSampleResult, error) {
	if f.failFirst {
		f.failFirst = false
		return nil, fmt.Errorf("ffmpeg exploded")
	}
	return f.inner.SampleFrames(ctx, videoPath, outputDir)
}

// fakeDetector misses every missEvery-th frame it sees; 0 means a face in
// every frame.
type fakeDetector struct {
	missEvery int
	calls     int
}

func (f *fakeDetector) DetectLargestFace(string) (image.Rectangle, bool, error) {
	f.calls++
	if f.missEvery > 0 && f.calls%f.missEvery == 0 {
		return image.Rectangle{}, false, nil
	}
	return image.Rect(10, 10, 50, 50), true, nil
}

type fakeEmbedder struct {
	dim   int
	value float32
}

func (f *fakeEmbedder) Dim() int { return f.dim }

func (f *fakeEmbedder) Embed(string, image.Rectangle) ([]float32, error) {
	emb := make([]float32, f.dim)
	for i := range emb {
		emb[i] = f.value
	}
	return emb, nil
}

type fakeStorage struct {
	archives map[string]string
	uploads  map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{archives: make(map[string]string), uploads: make(map[string][]byte)}
}

func (s *fakeStorage) DownloadArchive(_ context.Context, key, destPath string) error {
	src, ok := s.archives[key]
	if !ok {
		return fmt.Errorf("archive %s not found", key)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0644)
}

func (s *fakeStorage) UploadArtifact(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.uploads[key] = data
	return nil
}

type fakeNotifier struct {
	completions []string
	failures    []string
}

func (n *fakeNotifier) NotifyCompletion(_ context.Context, _, runID string, _ *entity.EvalReport) error {
	n.completions = append(n.completions, runID)
	return nil
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, _, runID, _, _ string) error {
	n.failures = append(n.failures, runID)
	return nil
}
