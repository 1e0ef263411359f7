package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *entity.Run) error {
	query := `
		INSERT INTO runs (
			id, dataset_key, archive_path, status, stage, video_count,
			train_count, test_count, model_key, report_key, report_json,
			error_message, created_at, updated_at, completed_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID.String(), run.DatasetKey, run.ArchivePath, string(run.Status), run.Stage,
		run.VideoCount, run.TrainCount, run.TestCount,
		run.ModelKey, run.ReportKey, encodeReport(run.Report),
		run.ErrorMessage, formatTime(run.CreatedAt), formatTime(run.UpdatedAt),
		formatTimePtr(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepository) Update(ctx context.Context, run *entity.Run) error {
	query := `
		UPDATE runs SET
			status=?, stage=?, video_count=?, train_count=?, test_count=?,
			model_key=?, report_key=?, report_json=?, error_message=?,
			updated_at=?, completed_at=?
		WHERE id=?`

	_, err := r.db.ExecContext(ctx, query,
		string(run.Status), run.Stage, run.VideoCount, run.TrainCount, run.TestCount,
		run.ModelKey, run.ReportKey, encodeReport(run.Report), run.ErrorMessage,
		formatTime(run.UpdatedAt), formatTimePtr(run.CompletedAt),
		run.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (r *RunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	query := `
		SELECT id, dataset_key, archive_path, status, stage, video_count,
			train_count, test_count, model_key, report_key, report_json,
			error_message, created_at, updated_at, completed_at
		FROM runs WHERE id=?`

	run := &entity.Run{}
	var runID, status, reportJSON, createdAt, updatedAt string
	var completedAt sql.NullString
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&runID, &run.DatasetKey, &run.ArchivePath, &status, &run.Stage,
		&run.VideoCount, &run.TrainCount, &run.TestCount,
		&run.ModelKey, &run.ReportKey, &reportJSON,
		&run.ErrorMessage, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find run by id: %w", err)
	}

	run.ID, err = uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	run.Status = entity.RunStatus(status)
	if reportJSON != "" {
		run.Report = &entity.EvalReport{}
		if err := json.Unmarshal([]byte(reportJSON), run.Report); err != nil {
			return nil, fmt.Errorf("decode run report: %w", err)
		}
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if run.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}
	return run, nil
}

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, v *entity.Video) error {
	query := `
		INSERT INTO videos (
			id, run_id, name, path, label, status, frame_count,
			face_count, duration, error_message, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`

	_, err := r.db.ExecContext(ctx, query,
		v.ID.String(), v.RunID.String(), v.Name, v.Path, string(v.Label), string(v.Status),
		v.FrameCount, v.FaceCount, v.Duration, v.ErrorMessage,
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) Update(ctx context.Context, v *entity.Video) error {
	query := `
		UPDATE videos SET
			status=?, frame_count=?, face_count=?, duration=?,
			error_message=?, updated_at=?
		WHERE id=?`

	_, err := r.db.ExecContext(ctx, query,
		string(v.Status), v.FrameCount, v.FaceCount, v.Duration,
		v.ErrorMessage, formatTime(v.UpdatedAt),
		v.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return nil
}

// ListByRun returns the run's videos, filtered by status unless status is
// empty.
func (r *VideoRepository) ListByRun(ctx context.Context, runID uuid.UUID, status entity.VideoStatus) ([]*entity.Video, error) {
	query := `
		SELECT id, run_id, name, path, label, status, frame_count,
			face_count, duration, error_message, created_at, updated_at
		FROM videos WHERE run_id=?`
	args := []any{runID.String()}
	if status != "" {
		query += " AND status=?"
		args = append(args, string(status))
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*entity.Video
	for rows.Next() {
		v := &entity.Video{}
		var id, run, label, vstatus, createdAt, updatedAt string
		err := rows.Scan(
			&id, &run, &v.Name, &v.Path, &label, &vstatus,
			&v.FrameCount, &v.FaceCount, &v.Duration, &v.ErrorMessage,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		if v.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse video id: %w", err)
		}
		if v.RunID, err = uuid.Parse(run); err != nil {
			return nil, fmt.Errorf("parse video run id: %w", err)
		}
		v.Label = entity.Label(label)
		v.Status = entity.VideoStatus(vstatus)
		if v.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func encodeReport(report *entity.EvalReport) string {
	if report == nil {
		return ""
	}
	data, _ := json.Marshal(report)
	return string(data)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
