package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	DatasetArchive string `env:"DATASET_ARCHIVE" envDefault:""`
	DatasetKey     string `env:"DATASET_KEY"     envDefault:""`

	MinIOEndpoint       string `env:"MINIO_ENDPOINT"        envDefault:""`
	MinIOAccessKey      string `env:"MINIO_ACCESS_KEY"      envDefault:"minioadmin"`
	MinIOSecretKey      string `env:"MINIO_SECRET_KEY"      envDefault:"minioadmin"`
	MinIOUseSSL         bool   `env:"MINIO_USE_SSL"         envDefault:"false"`
	MinIODatasetBucket  string `env:"MINIO_DATASET_BUCKET"  envDefault:"datasets"`
	MinIOArtifactBucket string `env:"MINIO_ARTIFACT_BUCKET" envDefault:"artifacts"`

	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"faceseq.db"`
	WorkDir     string `env:"WORK_DIR"     envDefault:"/tmp/faceseq"`
	ArtifactDir string `env:"ARTIFACT_DIR" envDefault:"artifacts"`

	SampleFrames int     `env:"SAMPLE_FRAMES" envDefault:"16"`
	FrameFormat  string  `env:"FRAME_FORMAT"  envDefault:"png"`
	MinFaces     int     `env:"MIN_FACES"     envDefault:"8"`
	FaceMargin   float64 `env:"FACE_MARGIN"   envDefault:"0.2"`
	MinFaceSize  int     `env:"MIN_FACE_SIZE" envDefault:"40"`

	CascadePath    string `env:"CASCADE_PATH"     envDefault:"models/haarcascade_frontalface_default.xml"`
	EmbedModelPath string `env:"EMBED_MODEL_PATH" envDefault:"models/facenet.onnx"`
	EmbedSize      int    `env:"EMBED_SIZE"       envDefault:"128"`
	EmbedInput     int    `env:"EMBED_INPUT"      envDefault:"160"`

	GRUHidden     int     `env:"GRU_HIDDEN"     envDefault:"64"`
	BatchSize     int     `env:"BATCH_SIZE"     envDefault:"32"`
	Epochs        int     `env:"EPOCHS"         envDefault:"10"`
	LearnRate     float64 `env:"LEARN_RATE"     envDefault:"0.001"`
	TrainFraction float64 `env:"TRAIN_FRACTION" envDefault:"0.8"`
	Seed          int64   `env:"SEED"           envDefault:"42"`
	Threshold     float64 `env:"THRESHOLD"      envDefault:"0.5"`

	SMTPHost       string `env:"SMTP_HOST"       envDefault:""`
	SMTPPort       int    `env:"SMTP_PORT"       envDefault:"1025"`
	SMTPFrom       string `env:"SMTP_FROM"       envDefault:"noreply@faceseq.local"`
	NotificationTo string `env:"NOTIFICATION_TO" envDefault:""`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"8083"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
