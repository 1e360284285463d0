package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler receives a matching event
type Handler func(ctx context.Context, e Event) error

// Hub is an in-process publisher. Subscribers run synchronously, in subscription
// order, on the publishing goroutine.
type Hub struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
}

type subscription struct {
	id      int
	filter  Filter
	handler Handler
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers handler for events matching filter and returns its cancel func
func (h *Hub) Subscribe(filter Filter, handler Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs = append(h.subs, subscription{id: id, filter: filter, handler: handler})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every matching subscriber. A failing or panicking
// subscriber does not stop delivery to the others.
func (h *Hub) Publish(ctx context.Context, e Event) error {
	h.mu.RLock()
	subs := append([]subscription(nil), h.subs...)
	h.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if !s.filter.Matches(e) {
			continue
		}
		if err := deliver(ctx, s.handler, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, handler Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return handler(ctx, e)
}

// Len returns the number of subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
