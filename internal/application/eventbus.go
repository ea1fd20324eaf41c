package application

import (
	"log/slog"
	"sync"
)

// EventType names a broadcast sent to every listening surface.
type EventType string

const (
	EventCreditsUpdated         EventType = "creditsUpdated"
	EventAuthenticationComplete EventType = "authenticationComplete"
)

// Event is a fire-and-forget notification. Credits is set for both event
// types; Email only for EventAuthenticationComplete.
type Event struct {
	Type    EventType `json:"action"`
	Credits int       `json:"credits"`
	Email   string    `json:"email,omitempty"`
}

// EventBus fans events out to subscribers without delivery guarantees.
// A slow subscriber misses events rather than blocking the publisher.
type EventBus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewEventBus creates an EventBus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener with the given channel buffer. The returned
// function unsubscribes and closes the channel; it is safe to call twice.
func (b *EventBus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer and returns
// how many received it. Zero subscribers is not an error.
func (b *EventBus) Publish(e Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for id, ch := range b.subs {
		select {
		case ch <- e:
			delivered++
		default:
			slog.Debug("event dropped for slow subscriber", "event", e.Type, "subscriber", id)
		}
	}
	return delivered
}
