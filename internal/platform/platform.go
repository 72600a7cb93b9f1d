// Package platform models the dealer platform API the hydration pipeline
// subscribes to for page-load events.
package platform

import (
	"context"
	"sync"
)

// PageLoadEvent is published once per page view.
const PageLoadEvent = "page-load-v1"

// Payload carries the event details the pipeline reads.
type Payload struct {
	PageName string `json:"pageName"`
}

// Event is a named platform event.
type Event struct {
	Name    string  `json:"name"`
	Payload Payload `json:"payload"`
}

// Handler receives subscribed events.
type Handler func(ctx context.Context, ev Event)

// API is a platform handle that delivers events to subscribers.
type API interface {
	Subscribe(name string, h Handler) (unsubscribe func())
}

// Publisher delivers an event to every subscriber of its name.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Loader creates platform API handles. Creation may fail transiently.
type Loader interface {
	Create(ctx context.Context) (API, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (API, error)

// Create calls f.
func (f LoaderFunc) Create(ctx context.Context) (API, error) { return f(ctx) }

// Bus is an in-process API. Publish runs handlers synchronously in
// subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string][]subscription
}

type subscription struct {
	id int
	h  Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]subscription)}
}

// Subscribe registers h for events named name.
func (b *Bus) Subscribe(name string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[name] = append(b.handlers[name], subscription{id: id, h: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[name]
		for i, s := range subs {
			if s.id == id {
				b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every handler subscribed to ev.Name.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[ev.Name]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.h(ctx, ev)
	}
}
