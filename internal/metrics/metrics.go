// Package metrics exposes Prometheus collectors for the HTTP layer and the alert pipeline.
//
// Collectors are registered on the default registry at init and served from /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distress_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "distress_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AlertsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distress_alerts_created_total",
			Help: "Total number of distress alerts created",
		},
	)

	// NotificationsTotal counts emergency contact notifications by channel and outcome.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distress_notifications_total",
			Help: "Emergency contact notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	FanOutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "distress_fanout_duration_seconds",
			Help:    "Time taken for a notification fan-out to settle",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distress_escalations_total",
			Help: "Escalation attempts by outcome",
		},
		[]string{"outcome"},
	)

	DroneDeploysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distress_drone_deploys_total",
			Help: "Drone deploy requests by outcome",
		},
		[]string{"outcome"},
	)

	AudioRecordingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distress_audio_recordings_total",
			Help: "Audio recordings stored by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordNotification(channel, status string) {
	NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func RecordFanOut(duration time.Duration) {
	FanOutDuration.Observe(duration.Seconds())
}

func RecordAlertCreated() {
	AlertsCreatedTotal.Inc()
}

func RecordEscalation(outcome string) {
	EscalationsTotal.WithLabelValues(outcome).Inc()
}

func RecordDroneDeploy(outcome string) {
	DroneDeploysTotal.WithLabelValues(outcome).Inc()
}

func RecordAudioRecording(outcome string) {
	AudioRecordingsTotal.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
