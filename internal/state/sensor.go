package state

import (
	"strings"
	"time"

	"github.com/spacefrags/kopia-status/internal/ledger"
	"github.com/spacefrags/kopia-status/internal/model"
)

// EntityID returns the sensor entity ID for a webhook instance.
func EntityID(webhookID string) string {
	return "sensor.kopia_" + webhookID
}

// buildSensor derives the published sensor for an instance: state is the
// status of the most recent event, attributes carry the latest run's fields
// plus the remaining history.
func buildSensor(inst model.Instance, led *ledger.Ledger, now time.Time) model.Sensor {
	sensor := model.Sensor{
		EntityID:    EntityID(inst.WebhookID),
		State:       model.StatusUnknown,
		LastUpdated: now,
		Attributes: map[string]any{
			"webhook_id":    inst.WebhookID,
			"friendly_name": friendlyName(inst),
			"history_limit": inst.HistoryLimit,
		},
	}

	latest, ok := led.Latest()
	if !ok {
		sensor.Attributes["history"] = []model.BackupEvent{}
		return sensor
	}

	sensor.State = latest.Status
	attrs := sensor.Attributes
	attrs["source"] = sourceSegment(latest.SourcePath)
	attrs["source_path"] = latest.SourcePath
	attrs["received_at"] = latest.ReceivedAt
	if latest.StartTime != nil {
		attrs["start_time"] = *latest.StartTime
	}
	if latest.EndTime != nil {
		attrs["end_time"] = *latest.EndTime
	}
	if latest.DurationSeconds != nil {
		attrs["duration_seconds"] = *latest.DurationSeconds
	}
	if latest.SizeBytes != nil {
		attrs["size_bytes"] = *latest.SizeBytes
	}
	if latest.Files != nil {
		attrs["files"] = *latest.Files
	}
	if latest.Directories != nil {
		attrs["directories"] = *latest.Directories
	}
	if latest.Error != nil {
		attrs["error"] = *latest.Error
	}

	// The runs behind the latest one.
	attrs["history"] = led.Events()[1:]

	return sensor
}

func friendlyName(inst model.Instance) string {
	if inst.Name != "" {
		return inst.Name
	}
	words := strings.Split(strings.ReplaceAll(inst.WebhookID, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return "Kopia " + strings.Join(words, " ")
}

// sourceSegment extracts the last path segment, lowercased, as the short
// source name ("/volume1/Nextcloud" -> "nextcloud").
func sourceSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return strings.ToLower(segments[len(segments)-1])
}
