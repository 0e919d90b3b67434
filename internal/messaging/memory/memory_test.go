package memory

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"
)

func TestBroker_DeliversInPublishOrder(t *testing.T) {
	b := New(log.New(os.Stderr, "[test] ", 0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 10)
	ready := make(chan struct{})
	go func() {
		close(ready)
		_ = b.Consume(ctx, "t", "g", func(_ context.Context, payload []byte) error {
			var n int
			if err := json.Unmarshal(payload, &n); err != nil {
				t.Errorf("unmarshal: %v", err)
				return err
			}
			got <- n
			return nil
		})
	}()
	<-ready
	// Give Consume a beat to register its channel.
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := b.Publish(ctx, "t", "k", i); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	for want := 0; want < 5; want++ {
		select {
		case n := <-got:
			if n != want {
				t.Fatalf("out of order: got %d, want %d", n, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", want)
		}
	}
}

func TestBroker_ConsumerUnregistersOnCancel(t *testing.T) {
	b := New(log.New(os.Stderr, "[test] ", 0))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- b.Consume(ctx, "t", "g", func(context.Context, []byte) error { return nil })
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop on cancel")
	}

	// A publish after teardown must not block on the dead consumer.
	pubCtx, pubCancel := context.WithTimeout(context.Background(), time.Second)
	defer pubCancel()
	if err := b.Publish(pubCtx, "t", "k", "x"); err != nil {
		t.Fatalf("publish after unsubscribe: %v", err)
	}
}
