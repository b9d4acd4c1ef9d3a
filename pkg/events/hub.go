package events

import "sync"

type (
	// Hub is an in-process fan-out of flow events. Publish never blocks: a
	// consumer that falls behind loses events rather than stalling the
	// engine's step evaluation
	Hub struct {
		consumers map[*Consumer]struct{}
		mu        sync.Mutex
		closed    bool
	}

	// Consumer receives events from a Hub until closed
	Consumer struct {
		hub *Hub
		ch  chan *FlowEvent
	}
)

const consumerBufferSize = 64

// NewHub creates an empty event hub
func NewHub() *Hub {
	return &Hub{
		consumers: map[*Consumer]struct{}{},
	}
}

// NewConsumer registers a new subscriber on the hub
func (h *Hub) NewConsumer() *Consumer {
	c := &Consumer{
		hub: h,
		ch:  make(chan *FlowEvent, consumerBufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.ch)
		return c
	}
	h.consumers[c] = struct{}{}
	return c
}

// Publish delivers the event to every registered consumer
func (h *Hub) Publish(ev *FlowEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for c := range h.consumers {
		select {
		case c.ch <- ev:
		default:
		}
	}
}

// Close shuts down the hub and every registered consumer
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.consumers {
		close(c.ch)
	}
	h.consumers = map[*Consumer]struct{}{}
}

// Receive returns the consumer's event channel. The channel is closed when
// the consumer or the hub is closed
func (c *Consumer) Receive() <-chan *FlowEvent {
	return c.ch
}

// Close unregisters the consumer from its hub
func (c *Consumer) Close() {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.consumers[c]; !ok {
		return
	}
	delete(c.hub.consumers, c)
	close(c.ch)
}
