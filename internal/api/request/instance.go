package request

// CreateInstance registers a new webhook instance. The webhook ID is
// generated server-side when omitted.
type CreateInstance struct {
	WebhookID    string `json:"webhook_id" validate:"omitempty,webhook_id"`
	Name         string `json:"name" validate:"omitempty,max=64"`
	HistoryLimit int    `json:"history_limit" validate:"omitempty,min=5,max=40"`
}
