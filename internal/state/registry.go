// Package state owns the webhook instance registry: each instance's history
// ledger, its derived sensor, the state-changed event bus, and the restore
// file that carries sensors across restarts.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacefrags/kopia-status/internal/kopia"
	"github.com/spacefrags/kopia-status/internal/ledger"
	"github.com/spacefrags/kopia-status/internal/metrics"
	"github.com/spacefrags/kopia-status/internal/model"
	"github.com/spacefrags/kopia-status/internal/platform"
)

var (
	ErrUnknownWebhook   = errors.New("unknown webhook ID")
	ErrUnknownInstance  = errors.New("unknown instance")
	ErrDuplicateWebhook = errors.New("webhook ID already registered")
)

type entry struct {
	inst   model.Instance
	ledger *ledger.Ledger
	sensor model.Sensor
}

// Registry holds all webhook instances. Mutations are serialized by a single
// lock; ledger ownership is exclusive to the registry entry.
type Registry struct {
	mu        sync.RWMutex
	logger    zerolog.Logger
	bus       *Bus
	stateFile string
	byWebhook map[string]*entry
	byID      map[string]*entry
}

func NewRegistry(logger zerolog.Logger, bus *Bus, stateFile string) *Registry {
	return &Registry{
		logger:    logger,
		bus:       bus,
		stateFile: stateFile,
		byWebhook: make(map[string]*entry),
		byID:      make(map[string]*entry),
	}
}

// Register adds a new instance, filling in the ID, history limit default, and
// creation time. The caller validates field formats; the registry only
// enforces webhook ID uniqueness.
func (r *Registry) Register(inst model.Instance) (model.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byWebhook[inst.WebhookID]; exists {
		return model.Instance{}, fmt.Errorf("%w: %s", ErrDuplicateWebhook, inst.WebhookID)
	}

	if inst.ID == "" {
		inst.ID = platform.NewID()
	}
	if inst.HistoryLimit == 0 {
		inst.HistoryLimit = model.DefaultHistoryLimit
	}
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = time.Now().UTC()
	}

	e := &entry{
		inst:   inst,
		ledger: ledger.New(inst.HistoryLimit),
	}
	e.sensor = buildSensor(inst, e.ledger, inst.CreatedAt)
	r.byWebhook[inst.WebhookID] = e
	r.byID[inst.ID] = e

	r.logger.Info().
		Str("webhook_id", inst.WebhookID).
		Int("history_limit", inst.HistoryLimit).
		Msg("webhook instance registered")

	r.persistLocked()
	return inst, nil
}

// Unregister removes an instance by its ID, destroying its ledger and sensor
// and emitting a removal event.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	e, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownInstance
	}
	delete(r.byID, id)
	delete(r.byWebhook, e.inst.WebhookID)
	r.persistLocked()
	r.mu.Unlock()

	metrics.RemoveInstance(e.inst.WebhookID)
	r.bus.Publish(Event{
		Type:     EventInstanceRemoved,
		EntityID: e.sensor.EntityID,
		Time:     time.Now().UTC(),
	})

	r.logger.Info().Str("webhook_id", e.inst.WebhookID).Msg("webhook instance removed")
	return nil
}

// Apply records a decoded payload against the instance owning webhookID and
// republishes its sensor.
func (r *Registry) Apply(webhookID string, p kopia.Payload) (model.Sensor, error) {
	r.mu.Lock()
	e, ok := r.byWebhook[webhookID]
	if !ok {
		r.mu.Unlock()
		return model.Sensor{}, fmt.Errorf("%w: %s", ErrUnknownWebhook, webhookID)
	}

	now := time.Now().UTC()
	ev := model.BackupEvent{
		ID:              platform.NewID(),
		SourcePath:      p.SourcePath,
		Status:          model.NormalizeStatus(p.Status),
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		DurationSeconds: p.DurationSeconds,
		SizeBytes:       p.SizeBytes,
		Files:           p.Files,
		Directories:     p.Directories,
		Error:           p.Error,
		ReceivedAt:      now,
	}

	e.ledger.Record(ev)
	e.sensor = buildSensor(e.inst, e.ledger, now)
	sensor := e.sensor
	r.persistLocked()
	r.mu.Unlock()

	metrics.RecordEvent(webhookID, ev)
	r.bus.Publish(Event{
		Type:     EventStateChanged,
		EntityID: sensor.EntityID,
		Sensor:   &sensor,
		Time:     now,
	})

	return sensor, nil
}

// Instance returns one instance by its ID.
func (r *Registry) Instance(id string) (model.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return model.Instance{}, ErrUnknownInstance
	}
	return e.inst, nil
}

// Instances returns all registered instances, ordered by webhook ID.
func (r *Registry) Instances() []model.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Instance, 0, len(r.byWebhook))
	for _, e := range r.byWebhook {
		out = append(out, e.inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WebhookID < out[j].WebhookID })
	return out
}

// History returns the event ledger for one instance, most recent first.
func (r *Registry) History(id string) ([]model.BackupEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, ErrUnknownInstance
	}
	return e.ledger.Events(), nil
}

// Sensor returns the published sensor for one entity ID.
func (r *Registry) Sensor(entityID string) (model.Sensor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.byWebhook {
		if e.sensor.EntityID == entityID {
			return e.sensor, true
		}
	}
	return model.Sensor{}, false
}

// Sensors returns all published sensors, ordered by entity ID.
func (r *Registry) Sensors() []model.Sensor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Sensor, 0, len(r.byWebhook))
	for _, e := range r.byWebhook {
		out = append(out, e.sensor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
