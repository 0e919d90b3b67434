// Package memory is the single-process broker used when no Kafka brokers are
// configured, and in tests. Delivery preserves publish order per topic.
package memory

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"foodorder/internal/messaging"
)

type Broker struct {
	logger *log.Logger

	mu     sync.Mutex
	chans  map[string][]chan []byte
	closed bool
}

func New(logger *log.Logger) *Broker {
	return &Broker{logger: logger, chans: make(map[string][]chan []byte)}
}

func (b *Broker) Publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	b.mu.Lock()
	subs := append([]chan []byte(nil), b.chans[topic]...)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- payload:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *Broker) Consume(ctx context.Context, topic, group string, handler func(ctx context.Context, payload []byte) error) error {
	ch := make(chan []byte, 256)
	b.mu.Lock()
	b.chans[topic] = append(b.chans[topic], ch)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		subs := b.chans[topic]
		for i, c := range subs {
			if c == ch {
				b.chans[topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-ch:
			if err := handler(ctx, payload); err != nil {
				b.logger.Printf("memory handle %s: %v", topic, err)
			}
		}
	}
}

var _ messaging.Publisher = (*Broker)(nil)
var _ messaging.Subscriber = (*Broker)(nil)
