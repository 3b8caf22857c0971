package state

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacefrags/kopia-status/internal/model"
)

// Event types emitted on the bus.
const (
	EventStateChanged    = "state_changed"
	EventInstanceRemoved = "instance_removed"
)

// Event is one bus notification, delivered to every subscriber.
type Event struct {
	Type     string        `json:"type"`
	EntityID string        `json:"entity_id,omitempty"`
	Sensor   *model.Sensor `json:"sensor,omitempty"`
	Time     time.Time     `json:"time"`
}

const subscriberBuffer = 64

// Bus fans out state events to subscribers. Delivery is best-effort: a
// subscriber whose buffer is full misses the event rather than blocking the
// publisher.
type Bus struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber channel.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to all subscribers without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn().
				Str("type", ev.Type).
				Str("entity_id", ev.EntityID).
				Msg("subscriber buffer full, dropping event")
		}
	}
}
