package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faceseq_runs_total",
		Help: "Total number of pipeline runs, by final status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faceseq_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
	}, []string{"stage"})

	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faceseq_videos_processed_total",
		Help: "Total number of videos processed by the embed stage, by outcome",
	}, []string{"outcome"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceseq_frames_sampled_total",
		Help: "Total number of frames sampled across all videos",
	})

	FacesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceseq_faces_detected_total",
		Help: "Total number of faces detected and embedded",
	})

	TrainingLoss = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "faceseq_training_loss",
		Help: "Mean training loss of the most recent epoch",
	})

	TrainingEpochsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceseq_training_epochs_total",
		Help: "Total number of training epochs completed",
	})
)
