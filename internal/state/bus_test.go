package state

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	b := NewBus(zerolog.Nop())

	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(Event{Type: EventStateChanged, EntityID: "sensor.kopia_x", Time: time.Now()})

	require.Len(t, a, 1)
	require.Len(t, c, 1)
	assert.Equal(t, "sensor.kopia_x", (<-a).EntityID)
	assert.Equal(t, "sensor.kopia_x", (<-c).EntityID)
}

func TestBus_DropsWhenSubscriberFull(t *testing.T) {
	b := NewBus(zerolog.Nop())

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	// Overfill the buffer; Publish must never block.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Event{Type: EventStateChanged})
	}

	assert.Len(t, sub, subscriberBuffer)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(zerolog.Nop())

	sub := b.Subscribe()
	b.Unsubscribe(sub)

	_, ok := <-sub
	assert.False(t, ok)

	// Publishing after unsubscribe is a no-op for this channel.
	b.Publish(Event{Type: EventStateChanged})

	// Unsubscribing twice must not panic.
	b.Unsubscribe(sub)
}
