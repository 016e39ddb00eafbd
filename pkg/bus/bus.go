// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package bus

import (
	"context"
	"sync"
)

// EventBus fans task progress events out from the running step loop to
// whoever is watching (the CLI progress printer, a dashboard feed).
type EventBus struct {
	events chan Event
	closed bool
	mu     sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		events: make(chan Event, 100),
	}
}

// Publish emits an event. Drops silently after Close.
func (eb *EventBus) Publish(ev Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return
	}
	eb.events <- ev
}

// Consume blocks until an event arrives, the bus closes, or ctx is done.
func (eb *EventBus) Consume(ctx context.Context) (Event, bool) {
	select {
	case ev, ok := <-eb.events:
		if !ok {
			return Event{}, false
		}
		return ev, true
	case <-ctx.Done():
		return Event{}, false
	}
}

func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.events)
}
