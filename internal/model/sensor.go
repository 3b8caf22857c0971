package model

import "time"

// Sensor is the published view of one instance, shaped like a Home Assistant
// sensor entity: a scalar state plus free-form attributes.
type Sensor struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastUpdated time.Time      `json:"last_updated"`
}
