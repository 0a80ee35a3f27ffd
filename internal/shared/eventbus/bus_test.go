package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// dummyEvent implements Event for testing
type dummyEvent struct {
	typeStr   string
	data      interface{}
	timestamp time.Time
	source    string
}

func (e *dummyEvent) Type() string         { return e.typeStr }
func (e *dummyEvent) Data() interface{}    { return e.data }
func (e *dummyEvent) Timestamp() time.Time { return e.timestamp }
func (e *dummyEvent) Source() string       { return e.source }

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBusWithConfig(nil, DefaultBusConfig())
	var called bool
	bus.Subscribe(EventTypeTripCreated, func(ctx context.Context, event Event) error {
		called = true
		assert.Equal(t, EventTypeTripCreated, event.Type())
		return nil
	})
	err := bus.Publish(context.Background(), &dummyEvent{typeStr: EventTypeTripCreated, timestamp: time.Now()})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestEventBus_NoHandlers(t *testing.T) {
	bus := NewEventBusWithConfig(nil, DefaultBusConfig())
	err := bus.Publish(context.Background(), &dummyEvent{typeStr: "unknown", timestamp: time.Now()})
	assert.NoError(t, err)
}

func TestEventBus_AsyncPublish(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{AsyncProcessing: true})
	ch := make(chan struct{})
	bus.Subscribe(EventTypeItemCreated, func(ctx context.Context, event Event) error {
		ch <- struct{}{}
		return nil
	})
	_ = bus.Publish(context.Background(), &dummyEvent{typeStr: EventTypeItemCreated, timestamp: time.Now()})
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for async event")
	}
}

func TestEventBus_MultipleHandlersFanOut(t *testing.T) {
	// Item creation feeds both the enrichment handler and the aggregator;
	// both must observe every event.
	bus := NewEventBusWithConfig(nil, DefaultBusConfig())
	var count int32
	for i := 0; i < 2; i++ {
		bus.Subscribe(EventTypeItemCreated, func(ctx context.Context, event Event) error {
			atomic.AddInt32(&count, 1)
			return nil
		})
	}
	err := bus.Publish(context.Background(), &dummyEvent{typeStr: EventTypeItemCreated, timestamp: time.Now()})
	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&count))
}

func TestEventBus_Retry(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	var attempts int32
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	err := bus.Publish(context.Background(), &dummyEvent{typeStr: "flaky", timestamp: time.Now()})
	assert.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestEventBus_RetryExhausted(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	bus.Subscribe("failing", func(ctx context.Context, event Event) error {
		return errors.New("permanent")
	})
	err := bus.Publish(context.Background(), &dummyEvent{typeStr: "failing", timestamp: time.Now()})
	assert.Error(t, err)
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBusWithConfig(nil, DefaultBusConfig())
	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventTypeItemDeleted, func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	})
	bus.PublishAndForget(context.Background(), &dummyEvent{typeStr: EventTypeItemDeleted, timestamp: time.Now()})
	wait := make(chan struct{})
	go func() {
		wg.Wait()
		close(wait)
	}()
	select {
	case <-wait:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for fire-and-forget delivery")
	}
}

func TestEventBus_GetSubscriberCount(t *testing.T) {
	bus := NewEventBusWithConfig(nil, DefaultBusConfig())
	assert.Equal(t, 0, bus.GetSubscriberCount(EventTypeItemUpdated))
	bus.Subscribe(EventTypeItemUpdated, func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount(EventTypeItemUpdated))
}

func TestBasicEvent(t *testing.T) {
	ev := NewBasicEventWithSource(EventTypeTripCreated, "payload", "trips")
	assert.Equal(t, EventTypeTripCreated, ev.Type())
	assert.Equal(t, "payload", ev.Data())
	assert.Equal(t, "trips", ev.Source())
	assert.WithinDuration(t, time.Now(), ev.Timestamp(), time.Second)
}
