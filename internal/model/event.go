package model

import "time"

// BackupEvent is one reported Kopia backup run. Immutable once recorded;
// fields the payload did not carry stay nil.
type BackupEvent struct {
	ID              string     `json:"id"`
	SourcePath      string     `json:"source_path,omitempty"`
	Status          string     `json:"status"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
	SizeBytes       *int64     `json:"size_bytes,omitempty"`
	Files           *int64     `json:"files,omitempty"`
	Directories     *int64     `json:"directories,omitempty"`
	Error           *string    `json:"error,omitempty"`
	ReceivedAt      time.Time  `json:"received_at"`
}
