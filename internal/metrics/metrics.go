// Package metrics exposes Prometheus instrumentation for the posture
// pipeline. Metrics are registered with the default registry and served by
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesTotal counts pose frames accepted by the pipeline.
	FramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posture_frames_total",
			Help: "Total number of pose frames processed",
		},
	)

	// MalformedFramesTotal counts frames discarded at the feed boundary.
	MalformedFramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posture_malformed_frames_total",
			Help: "Total number of malformed pose frames discarded",
		},
	)

	// CurrentScore is the most recent composite posture score.
	CurrentScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "posture_score",
			Help: "Current composite posture score (0-100)",
		},
	)

	// ClassificationsTotal counts frames by GOOD/BAD classification.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posture_classifications_total",
			Help: "Total number of frames by classification",
		},
		[]string{"classification"},
	)

	// AlertsTotal counts frames on which each alert was active.
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posture_alert_frames_total",
			Help: "Total number of frames with an active alert, by alert type",
		},
		[]string{"alert"},
	)

	// UpdateLatency observes the engine update duration per frame.
	UpdateLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "posture_update_latency_seconds",
			Help:    "Engine update latency in seconds",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
		},
	)
)
