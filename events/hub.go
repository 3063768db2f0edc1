package events

import (
	"encoding/json"
	"log"
	"sync"
)

const (
	KindOrderCreated = "order-created"
	KindStateChanged = "state-changed"
)

// Event is a transient lifecycle notification. It lives only on the hub;
// nothing is persisted or replayed.
type Event struct {
	Kind       string `json:"kind"`
	UserID     uint   `json:"user_id,omitempty"`
	OrderID    uint   `json:"order_id,omitempty"`
	NewStateID uint   `json:"new_state_id,omitempty"`
}

// Publisher is the write side of the hub, all the order lifecycle needs.
type Publisher interface {
	Publish(ev Event)
}

// Sink receives serialized events. A Send error marks the sink dead.
type Sink interface {
	Send(data []byte) error
}

// Hub fans events out to every registered sink. Delivery is best effort:
// no buffering, no acknowledgment, and a sink that fails a write is
// dropped during that publish without affecting the others.
type Hub struct {
	mu    sync.Mutex
	sinks map[Sink]struct{}
}

func NewHub() *Hub {
	return &Hub{sinks: make(map[Sink]struct{})}
}

func (h *Hub) Subscribe(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[s] = struct{}{}
}

func (h *Hub) Unsubscribe(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks, s)
}

func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("events: failed to marshal %s event: %v", ev.Kind, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sinks {
		if err := s.Send(data); err != nil {
			delete(h.sinks, s)
		}
	}
}
