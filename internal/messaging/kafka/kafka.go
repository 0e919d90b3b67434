// Package kafka backs the messaging interfaces with a Kafka cluster. The hash
// balancer routes each key to a fixed partition, which is what keeps one
// order's events in commit order for every consumer group.
package kafka

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"foodorder/internal/messaging"
	kafkago "github.com/segmentio/kafka-go"
)

type Broker struct {
	brokers []string
	logger  *log.Logger

	mu      sync.Mutex
	writers map[string]*kafkago.Writer
}

// New parses a comma separated broker list. An empty list yields a nil
// broker; callers fall back to the in-process implementation.
func New(brokersCSV string, logger *log.Logger) *Broker {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return &Broker{brokers: brokers, logger: logger, writers: make(map[string]*kafkago.Writer)}
}

func (b *Broker) writer(topic string) *kafkago.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.writers[topic]
	if !ok {
		w = &kafkago.Writer{
			Addr:         kafkago.TCP(b.brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
		}
		b.writers[topic] = w
	}
	return w
}

func (b *Broker) Publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.writer(topic).WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (b *Broker) Consume(ctx context.Context, topic, group string, handler func(ctx context.Context, payload []byte) error) error {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  b.brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Printf("kafka read %s: %v", topic, err)
			continue
		}
		if err := handler(ctx, msg.Value); err != nil {
			b.logger.Printf("kafka handle %s: %v", topic, err)
		}
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, w := range b.writers {
		if err := w.Close(); err != nil {
			b.logger.Printf("close kafka writer %s: %v", topic, err)
		}
	}
	b.writers = make(map[string]*kafkago.Writer)
	return nil
}

var _ messaging.Publisher = (*Broker)(nil)
var _ messaging.Subscriber = (*Broker)(nil)
