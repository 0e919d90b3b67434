// Package delivery consumes the carrier position feed and keeps the latest
// reported position per order. Positions are display only and never feed
// back into the order lifecycle.
package delivery

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"foodorder/internal/messaging"
)

type Tracker struct {
	logger *log.Logger

	mu     sync.RWMutex
	latest map[string]messaging.DeliveryPosition
}

func NewTracker(logger *log.Logger) *Tracker {
	return &Tracker{logger: logger, latest: make(map[string]messaging.DeliveryPosition)}
}

// Run attaches the tracker to the broker and blocks until ctx ends. Call
// once, from its own goroutine.
func (t *Tracker) Run(ctx context.Context, sub messaging.Subscriber) error {
	return sub.Consume(ctx, messaging.TopicDeliveryPosition, "delivery-tracker", t.handle)
}

func (t *Tracker) handle(_ context.Context, payload []byte) error {
	var pos messaging.DeliveryPosition
	if err := json.Unmarshal(payload, &pos); err != nil {
		return err
	}
	if pos.OrderID == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Carrier reports can arrive out of order; keep the newest timestamp.
	if prev, ok := t.latest[pos.OrderID]; ok && prev.At.After(pos.At) {
		return nil
	}
	t.latest[pos.OrderID] = pos
	return nil
}

// Latest returns the newest known position for the order, if any.
func (t *Tracker) Latest(orderID string) (messaging.DeliveryPosition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.latest[orderID]
	return pos, ok
}

// Forget drops an order's position, normally after a terminal transition.
func (t *Tracker) Forget(orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.latest, orderID)
}
