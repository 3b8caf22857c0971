package model

import "time"

// History limit bounds for a webhook instance.
const (
	MinHistoryLimit     = 5
	MaxHistoryLimit     = 40
	DefaultHistoryLimit = 10
)

// Instance is one configured webhook listener. Each instance owns an
// independent history ledger and sensor entity.
type Instance struct {
	ID           string    `json:"id"`
	WebhookID    string    `json:"webhook_id"`
	Name         string    `json:"name,omitempty"`
	HistoryLimit int       `json:"history_limit"`
	CreatedAt    time.Time `json:"created_at"`
}
