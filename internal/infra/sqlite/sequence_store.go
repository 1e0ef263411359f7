package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/google/uuid"
)

type SequenceStore struct {
	db *sql.DB
}

func NewSequenceStore(db *sql.DB) *SequenceStore {
	return &SequenceStore{db: db}
}

func (s *SequenceStore) Save(ctx context.Context, runID uuid.UUID, seq *entity.EmbeddingSequence) error {
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("invalid sequence: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO sequences (video_id, run_id, label, steps, dim, data, created_at)
		VALUES (?,?,?,?,?,?,?)`

	_, err := s.db.ExecContext(ctx, query,
		seq.VideoID.String(), runID.String(), string(seq.Label),
		seq.Steps, seq.Dim, seq.EncodeData(), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert sequence: %w", err)
	}
	return nil
}

func (s *SequenceStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*entity.EmbeddingSequence, error) {
	query := `
		SELECT video_id, label, steps, dim, data
		FROM sequences WHERE run_id=? ORDER BY video_id`

	rows, err := s.db.QueryContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	defer rows.Close()

	var seqs []*entity.EmbeddingSequence
	for rows.Next() {
		seq := &entity.EmbeddingSequence{}
		var videoID, label string
		var blob []byte
		if err := rows.Scan(&videoID, &label, &seq.Steps, &seq.Dim, &blob); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		if seq.VideoID, err = uuid.Parse(videoID); err != nil {
			return nil, fmt.Errorf("parse sequence video id: %w", err)
		}
		seq.Label = entity.Label(label)
		if seq.Data, err = entity.DecodeSequenceData(blob); err != nil {
			return nil, err
		}
		if err := seq.Validate(); err != nil {
			return nil, fmt.Errorf("stored sequence %s: %w", videoID, err)
		}
		seqs = append(seqs, seq)
	}
	return seqs, rows.Err()
}
