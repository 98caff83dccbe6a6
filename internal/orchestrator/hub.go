package orchestrator

import (
	"sync"
	"time"
)

// EventHub fans engine events out to subscribers.
//
// Delivery is synchronous and in publish order: Publish invokes every
// subscriber callback before returning, so a subscriber observing
// worker_completed for task A before task B knows A settled first.
// Subscribers must not block and must not call back into the hub;
// coordinator queries (GetContext, Workers) are safe from a callback,
// but operations that publish, such as InterruptContext, must be
// deferred to another goroutine.
type EventHub struct {
	mu   sync.Mutex // held across delivery so publishes cannot interleave
	subs map[int]func(Event)
	next int
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[int]func(Event)),
	}
}

// Subscribe registers a callback for all subsequent events.
// Returns an unsubscribe function. There is no replay; events published
// before Subscribe are never seen.
func (h *EventHub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish delivers an event to every subscriber, synchronously.
// The timestamp is stamped here if the caller left it zero.
func (h *EventHub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, fn := range h.subs {
		fn(e)
	}
}

// Channel returns a buffered channel adapter over a subscription, for
// consumers (the CLI event stream) that prefer select loops to callbacks.
// Events are dropped when the buffer is full so the engine never stalls
// on a slow consumer. The returned stop function unsubscribes and closes
// the channel.
func (h *EventHub) Channel(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	unsubscribe := h.Subscribe(func(e Event) {
		select {
		case ch <- e:
		default:
			debugLog("event hub: dropping %s event, channel full", e.Type)
		}
	})

	stop := func() {
		unsubscribe()
		close(ch)
	}
	return ch, stop
}
