// Package projection is the read side of the order lifecycle. Views answers
// list queries per audience; Hub fans live order events out to filtered
// in-process subscriptions fed by the messaging layer.
package projection

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"foodorder/internal/messaging"
)

// Filter narrows a subscription. Zero fields match everything; set fields
// must all match for an event to be delivered.
type Filter struct {
	CustomerID string
	BranchID   string
	OrderID    string
}

func (f Filter) matches(ev messaging.OrderEvent) bool {
	if f.CustomerID != "" && ev.Order.CustomerID != f.CustomerID {
		return false
	}
	if f.BranchID != "" && ev.Order.BranchID != f.BranchID {
		return false
	}
	if f.OrderID != "" && ev.Order.ID != f.OrderID {
		return false
	}
	return true
}

// Subscription is one live feed. Events arrives in the order the hub saw
// them. The owner must call Close when done; an unclosed subscription leaks
// its slot and, once the buffer fills, stalls only itself.
type Subscription struct {
	Events <-chan messaging.OrderEvent

	hub  *Hub
	id   uint64
	once sync.Once
}

// Close detaches the subscription and closes Events. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.drop(s.id) })
}

type subscriber struct {
	filter Filter
	ch     chan messaging.OrderEvent
}

// Hub consumes the order event topic and delivers each event, in arrival
// order, to every subscription whose filter matches. Slow subscribers drop
// their own oldest-unread events instead of blocking the rest.
type Hub struct {
	logger *log.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
	closed bool
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{logger: logger, subs: make(map[uint64]*subscriber)}
}

// Run attaches the hub to the broker and blocks until ctx ends. Call once,
// from its own goroutine.
func (h *Hub) Run(ctx context.Context, sub messaging.Subscriber) error {
	defer h.shutdown()
	return sub.Consume(ctx, messaging.TopicOrderEvents, "projection-hub", h.handle)
}

// Subscribe registers a live feed for events matching the filter. buffer
// bounds how far the subscriber may lag before old events are shed.
func (h *Hub) Subscribe(filter Filter, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan messaging.OrderEvent, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return &Subscription{Events: ch, hub: h}
	}
	h.nextID++
	id := h.nextID
	h.subs[id] = &subscriber{filter: filter, ch: ch}
	return &Subscription{Events: ch, hub: h, id: id}
}

func (h *Hub) handle(_ context.Context, payload []byte) error {
	var ev messaging.OrderEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if !s.filter.matches(ev) {
			continue
		}
		for {
			select {
			case s.ch <- ev:
			default:
				// Full buffer: shed the oldest unread event and retry.
				select {
				case <-s.ch:
				default:
				}
				continue
			}
			break
		}
	}
	return nil
}

func (h *Hub) drop(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.ch)
	}
}
