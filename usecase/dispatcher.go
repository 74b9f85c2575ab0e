package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fastygo/taskdesk/domain"
)

// AllEvents subscribes a handler to every event name.
const AllEvents = "*"

type EventHandler func(ctx context.Context, event domain.Event) error

// Dispatcher fans domain events out to the handlers subscribed to their name.
type Dispatcher struct {
	handlers map[string][]namedHandler
	mu       sync.RWMutex
}

type namedHandler struct {
	name string
	fn   EventHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]namedHandler)}
}

// Subscribe registers fn under name for event. Use AllEvents to receive everything.
func (d *Dispatcher) Subscribe(event, name string, fn EventHandler) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], namedHandler{name: name, fn: fn})
}

// Publish runs every matching handler. All handlers run even if one fails; failures are joined.
func (d *Dispatcher) Publish(ctx context.Context, event domain.Event) error {
	d.mu.RLock()
	targets := make([]namedHandler, 0, len(d.handlers[event.Name])+len(d.handlers[AllEvents]))
	targets = append(targets, d.handlers[event.Name]...)
	targets = append(targets, d.handlers[AllEvents]...)
	d.mu.RUnlock()

	var result error
	for _, h := range targets {
		if err := h.fn(ctx, event); err != nil {
			result = errors.Join(result, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return result
}

var _ EventPublisher = (*Dispatcher)(nil)
