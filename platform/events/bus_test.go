package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"meraki_leads_backend/platform/logger"
)

type testEvent struct{ BaseEvent }

func (testEvent) EventName() string { return "test.event" }

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var delivered int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
			atomic.AddInt32(&delivered, 1)
			return nil
		}))
	}

	bus.Publish(context.Background(), testEvent{})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&delivered) == 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected 3 deliveries, got %d", atomic.LoadInt32(&delivered))
}

func TestPublish_PanickingHandlerDoesNotAffectOthers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var delivered int32
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		panic("boom")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		atomic.AddInt32(&delivered, 1)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&delivered) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("handler after the panicking one was not delivered")
}

func TestPublishSync_JoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	wantErr := errors.New("handler failed")
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		return wantErr
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
}
