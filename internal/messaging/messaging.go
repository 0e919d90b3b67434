// Package messaging carries cart and order change events from the write path
// to live subscribers. Events for one entity share a key so a partitioned
// broker keeps them in commit order within a subscription.
package messaging

import (
	"context"
	"time"

	"foodorder/internal/domain"
)

const (
	TopicOrderEvents      = "order.events"
	TopicCartEvents       = "cart.events"
	TopicDeliveryPosition = "delivery.positions"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	CartChanged        = "cart.changed"
)

// OrderEvent is published after every committed order write. It carries the
// full order so read sides never have to chase the store.
type OrderEvent struct {
	EventID string       `json:"eventId"`
	Type    string       `json:"type"`
	Order   domain.Order `json:"order"`
	At      time.Time    `json:"at"`
}

// CartEvent signals that a cart partition changed; subscribers re-read the
// partition rather than patching local state.
type CartEvent struct {
	EventID    string    `json:"eventId"`
	CustomerID string    `json:"customerId"`
	BranchID   string    `json:"branchId"`
	At         time.Time `json:"at"`
}

// DeliveryPosition is the display-only carrier feed. It never drives status.
type DeliveryPosition struct {
	OrderID string    `json:"orderId"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
	At      time.Time `json:"at"`
}

// Publisher appends one event to a topic. Keys group events of one entity.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// Subscriber consumes a topic until the context ends, invoking the handler
// once per message in partition order. Handler errors are logged by the
// implementation and do not stop consumption.
type Subscriber interface {
	Consume(ctx context.Context, topic, group string, handler func(ctx context.Context, payload []byte) error) error
}
