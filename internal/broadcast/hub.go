package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

// Event is a live-update notification fanned out to connected dashboards.
type Event struct {
	Type        string `json:"type"`
	OrderLineID int64  `json:"order_line_id"`
	BundleID    string `json:"bundle_id"`
	Status      string `json:"status"`
	ProviderID  int64  `json:"provider_id"`
	ConsumerID  int64  `json:"consumer_id"`
}

// Event types delivered over the hub.
const (
	EventNewOrder     = "new_order"
	EventStatusUpdate = "status_update"
)

// Subscriber is one registered listener with a bounded delivery queue.
// Role and CallerID exist for edge filtering; the hub itself delivers every
// event to every subscriber.
type Subscriber struct {
	Role     string
	CallerID int64

	ch chan Event
}

// Events exposes the subscriber's delivery channel. The channel is closed when
// the subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub is an in-process publish/subscribe fan-out. Delivery is best-effort and
// at-most-once per connection: a subscriber whose queue is full is evicted so
// a stalled listener never blocks the publisher or its peers.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	buffer  int
	closed  bool
	logger  *zap.Logger
	dropped int64
}

// NewHub builds a hub with the given per-subscriber queue capacity.
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a listener. The returned subscriber must be released via
// Unsubscribe when the connection ends.
func (h *Hub) Subscribe(role string, callerID int64) *Subscriber {
	sub := &Subscriber{
		Role:     role,
		CallerID: callerID,
		ch:       make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a listener and closes its channel. Safe to call more
// than once and safe concurrently with Publish.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Publish enqueues the event to every currently registered subscriber and
// never blocks: a full queue evicts that subscriber on the spot. Sends happen
// under the registry lock, so a channel can never be closed by Unsubscribe or
// Close while a send to it is in flight. Each send is non-blocking, so the
// lock is held only for the queue handoffs themselves.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	evicted := 0
	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			delete(h.subs, sub)
			close(sub.ch)
			h.dropped++
			evicted++
		}
	}
	h.mu.Unlock()

	if evicted > 0 && h.logger != nil {
		h.logger.Warn("dropped stalled broadcast subscribers", zap.Int("count", evicted))
	}
}

// Dropped reports how many subscribers have been evicted for falling behind
// since the hub started.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Len reports the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drains the registry and closes every subscriber channel. Subsequent
// Subscribe calls return an already-closed subscriber and Publish becomes a
// no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
}
