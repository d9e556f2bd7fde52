package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Channel string
	Event   string
	Data    interface{}
}

// Hub manages SSE subscribers and event broadcasting. Channels are keyed by
// organization so admin dashboards can follow live attendance and timer
// transitions.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a channel and returns the event
// channel and cleanup function
func (h *Hub) Subscribe(channel string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan Event]struct{})
	}
	h.subscribers[channel][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[channel], ch)
		close(ch)
		if len(h.subscribers[channel]) == 0 {
			delete(h.subscribers, channel)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a channel
func (h *Hub) Publish(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[channel]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a channel
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}
