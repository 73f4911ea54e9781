package web

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the browser host's Prometheus collectors.
type Metrics struct {
	framesTotal    *prometheus.CounterVec
	frameErrors    *prometheus.CounterVec
	commitsTotal   prometheus.Counter
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keychord",
			Name:      "frames_total",
			Help:      "Total number of client frames processed, by type",
		}, []string{"type"}),

		frameErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keychord",
			Name:      "frame_errors_total",
			Help:      "Total number of rejected client frames, by reason",
		}, []string{"reason"}),

		commitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "keychord",
			Name:      "commits_total",
			Help:      "Total number of shortcut values emitted",
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "keychord",
			Name:      "active_sessions",
			Help:      "Number of open capture sessions",
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "keychord",
			Name:      "sessions_total",
			Help:      "Total number of capture sessions opened",
		}),
	}
}

// frameErrorReason classifies a decode error for the reason label.
func frameErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedFrame):
		return "malformed"
	case errors.Is(err, ErrUnknownFrameType):
		return "unknown_type"
	case errors.Is(err, ErrMissingKey):
		return "missing_key"
	default:
		return "other"
	}
}
