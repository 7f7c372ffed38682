package telemetry

import "sync"

// Hub fans snapshots out to live subscribers (the WebSocket feed). Slow
// subscribers drop readings rather than block the simulator.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Snapshot]struct{})}
}

// Subscribe registers a buffered channel that receives future snapshots.
// The caller must Unsubscribe when done.
func (h *Hub) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *Hub) Unsubscribe(ch chan Snapshot) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers a snapshot to every subscriber without blocking.
func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- snap:
		default: // subscriber is behind, skip this reading
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
