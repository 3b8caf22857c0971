// Package metrics holds the Prometheus collectors for backup-run reporting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spacefrags/kopia-status/internal/model"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kopia_backup_events_total",
			Help: "Total number of backup events recorded, by instance and status",
		},
		[]string{"webhook_id", "status"},
	)

	payloadErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kopia_webhook_payload_errors_total",
			Help: "Total number of webhook payloads that could not be parsed",
		},
		[]string{"webhook_id"},
	)

	lastRunSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kopia_backup_last_size_bytes",
			Help: "Total size of the most recent backup run",
		},
		[]string{"webhook_id"},
	)

	lastRunDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kopia_backup_last_duration_seconds",
			Help: "Duration of the most recent backup run",
		},
		[]string{"webhook_id"},
	)

	lastRunFiles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kopia_backup_last_files",
			Help: "File count of the most recent backup run",
		},
		[]string{"webhook_id"},
	)
)

// RecordEvent updates the per-instance collectors for a newly recorded event.
func RecordEvent(webhookID string, ev model.BackupEvent) {
	eventsTotal.WithLabelValues(webhookID, ev.Status).Inc()
	if ev.SizeBytes != nil {
		lastRunSizeBytes.WithLabelValues(webhookID).Set(float64(*ev.SizeBytes))
	}
	if ev.DurationSeconds != nil {
		lastRunDurationSeconds.WithLabelValues(webhookID).Set(*ev.DurationSeconds)
	}
	if ev.Files != nil {
		lastRunFiles.WithLabelValues(webhookID).Set(float64(*ev.Files))
	}
}

// RecordPayloadError counts a webhook body that could not be parsed.
func RecordPayloadError(webhookID string) {
	payloadErrorsTotal.WithLabelValues(webhookID).Inc()
}

// RemoveInstance drops the per-instance series when an instance is removed.
func RemoveInstance(webhookID string) {
	eventsTotal.DeletePartialMatch(prometheus.Labels{"webhook_id": webhookID})
	payloadErrorsTotal.DeleteLabelValues(webhookID)
	lastRunSizeBytes.DeleteLabelValues(webhookID)
	lastRunDurationSeconds.DeleteLabelValues(webhookID)
	lastRunFiles.DeleteLabelValues(webhookID)
}
