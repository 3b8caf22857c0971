// Package ledger implements the bounded backup-run history kept per webhook
// instance.
package ledger

import (
	"sync"

	"github.com/spacefrags/kopia-status/internal/model"
)

// Ledger is an ordered, most-recent-first list of backup events capped at a
// fixed limit. Recording at capacity evicts the oldest event.
type Ledger struct {
	mu     sync.Mutex
	limit  int
	events []model.BackupEvent
}

// New creates an empty ledger holding at most limit events.
func New(limit int) *Ledger {
	return &Ledger{limit: limit}
}

// Restore creates a ledger pre-populated from a snapshot, truncating to the
// limit if the snapshot is longer (the limit may have been lowered since the
// snapshot was taken).
func Restore(limit int, events []model.BackupEvent) *Ledger {
	l := New(limit)
	if len(events) > limit {
		events = events[:limit]
	}
	l.events = append(l.events, events...)
	return l
}

// Record prepends an event and truncates to the configured limit.
func (l *Ledger) Record(ev model.BackupEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append([]model.BackupEvent{ev}, l.events...)
	if len(l.events) > l.limit {
		l.events = l.events[:l.limit]
	}
}

// Latest returns the most recent event, if any.
func (l *Ledger) Latest() (model.BackupEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == 0 {
		return model.BackupEvent{}, false
	}
	return l.events[0], true
}

// Events returns a copy of all current events, most recent first.
func (l *Ledger) Events() []model.BackupEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.BackupEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Limit returns the configured maximum length.
func (l *Ledger) Limit() int {
	return l.limit
}
