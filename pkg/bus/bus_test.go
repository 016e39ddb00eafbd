package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsume(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	eb.Publish(Event{TaskID: "t1", Type: EventStepStarted, Step: 1, Timestamp: time.Now()})

	ev, ok := eb.Consume(context.Background())
	if !ok {
		t.Fatal("expected an event")
	}
	if ev.Type != EventStepStarted || ev.Step != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestConsumeAfterClose(t *testing.T) {
	eb := NewEventBus()
	eb.Close()

	if _, ok := eb.Consume(context.Background()); ok {
		t.Error("expected consume to fail on closed bus")
	}
}

func TestPublishAfterCloseDoesNotPanic(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Publish(Event{TaskID: "t1", Type: EventTaskFailed})
}

func TestConsumeRespectsContext(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, ok := eb.Consume(ctx); ok {
		t.Error("expected consume to time out")
	}
}
