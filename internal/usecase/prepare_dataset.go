package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/port"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const manifestName = "metadata.json"

var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
}

// PrepareDatasetUseCase unpacks the labeled dataset archive and registers
// one video record per labeled clip.
type PrepareDatasetUseCase struct {
	storage  port.DatasetStorage
	unzipper port.ArchiveExtractor
	runs     port.RunRepository
	videos   port.VideoRepository
	logger   *zap.Logger
	workDir  string
}

func NewPrepareDatasetUseCase(
	storage port.DatasetStorage,
	unzipper port.ArchiveExtractor,
	runs port.RunRepository,
	videos port.VideoRepository,
	logger *zap.Logger,
	workDir string,
) *PrepareDatasetUseCase {
	return &PrepareDatasetUseCase{
		storage:  storage,
		unzipper: unzipper,
		runs:     runs,
		videos:   videos,
		logger:   logger,
		workDir:  workDir,
	}
}

func (uc *PrepareDatasetUseCase) Execute(ctx context.Context, run *entity.Run) error {
	log := uc.logger.With(zap.String("run_id", run.ID.String()))

	runDir := filepath.Join(uc.workDir, run.ID.String())
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	archivePath := run.ArchivePath
	if run.DatasetKey != "" {
		if uc.storage == nil {
			return fmt.Errorf("dataset key %s configured but object storage is not", run.DatasetKey)
		}
		archivePath = filepath.Join(runDir, "dataset.zip")
		log.Info("downloading dataset archive", zap.String("key", run.DatasetKey))
		if err := uc.storage.DownloadArchive(ctx, run.DatasetKey, archivePath); err != nil {
			return fmt.Errorf("download archive: %w", err)
		}
	}
	if archivePath == "" {
		return fmt.Errorf("no dataset archive configured")
	}

	videosDir := filepath.Join(runDir, "videos")
	extracted, err := uc.unzipper.Extract(ctx, archivePath, videosDir)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	log.Info("dataset archive extracted", zap.Int("files", len(extracted)))

	manifest, err := loadManifest(extracted)
	if err != nil {
		return err
	}

	labeled := 0
	for _, path := range extracted {
		if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			continue
		}

		label, ok := resolveLabel(manifest, videosDir, path)
		if !ok {
			log.Warn("skipping unlabeled video", zap.String("video", filepath.Base(path)))
			continue
		}

		video := entity.NewVideo(run.ID, filepath.Base(path), path, label)
		if err := uc.videos.Create(ctx, video); err != nil {
			return fmt.Errorf("register video %s: %w", video.Name, err)
		}
		labeled++
	}

	if labeled == 0 {
		return fmt.Errorf("archive contains no labeled videos")
	}

	run.VideoCount = labeled
	if err := uc.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	log.Info("dataset prepared", zap.Int("videos", labeled))
	return nil
}

// loadManifest reads the archive's metadata.json when present. A nil map
// means directory names carry the labels.
func loadManifest(extracted []string) (map[string]entity.Label, error) {
	var manifestPath string
	for _, p := range extracted {
		if filepath.Base(p) == manifestName {
			manifestPath = p
			break
		}
	}
	if manifestPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var raw map[string]struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	manifest := make(map[string]entity.Label, len(raw))
	for name, meta := range raw {
		manifest[name] = entity.Label(strings.ToUpper(meta.Label))
	}
	return manifest, nil
}

// resolveLabel labels a video from the manifest, falling back to a
// real/ or fake/ directory prefix.
func resolveLabel(manifest map[string]entity.Label, videosDir, path string) (entity.Label, bool) {
	if manifest != nil {
		label, ok := manifest[filepath.Base(path)]
		if !ok || !label.Valid() {
			return "", false
		}
		return label, true
	}

	rel, err := filepath.Rel(videosDir, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "real":
		return entity.LabelReal, true
	case "fake":
		return entity.LabelFake, true
	}
	return "", false
}
