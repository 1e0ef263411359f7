package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	dataset_key   TEXT NOT NULL DEFAULT '',
	archive_path  TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	stage         TEXT NOT NULL DEFAULT '',
	video_count   INTEGER NOT NULL DEFAULT 0,
	train_count   INTEGER NOT NULL DEFAULT 0,
	test_count    INTEGER NOT NULL DEFAULT 0,
	model_key     TEXT NOT NULL DEFAULT '',
	report_key    TEXT NOT NULL DEFAULT '',
	report_json   TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	completed_at  TEXT
);

CREATE TABLE IF NOT EXISTS videos (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	name          TEXT NOT NULL,
	path          TEXT NOT NULL,
	label         TEXT NOT NULL,
	status        TEXT NOT NULL,
	frame_count   INTEGER NOT NULL DEFAULT 0,
	face_count    INTEGER NOT NULL DEFAULT 0,
	duration      REAL NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_videos_run_status ON videos(run_id, status);

CREATE TABLE IF NOT EXISTS sequences (
	video_id   TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	label      TEXT NOT NULL,
	steps      INTEGER NOT NULL,
	dim        INTEGER NOT NULL,
	data       BLOB NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sequences_run ON sequences(run_id);
`

// Open opens (or creates) the run store database and bootstraps the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// modernc sqlite does not support concurrent writers on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return db, nil
}
