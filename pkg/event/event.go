// Package event provides a small in-process event bus.
//
// The realtime channel publishes push notifications onto a Bus; the order
// collection store (and anything else — the CLI's watch command, metrics)
// subscribes without the publisher knowing its consumers.
package event

import "sync"

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus is a named-topic dispatcher. The zero value is not usable; construct
// with NewBus, or use the package-level default bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Subscribe registers a handler for the given event name.
func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish dispatches an event synchronously to all subscribed handlers,
// in subscription order.
func (b *Bus) Publish(event string, payload interface{}) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// PublishAsync dispatches to all handlers concurrently and returns
// immediately.
func (b *Bus) PublishAsync(event string, payload interface{}) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range hs {
		go h(payload)
	}
}

// Reset removes all handlers. Useful in tests.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

// ── Default bus ──────────────────────────────────────────────────────────────

var defaultBus = NewBus()

// Default returns the process-wide bus.
func Default() *Bus { return defaultBus }

// Subscribe registers a handler on the default bus.
func Subscribe(event string, handler Handler) { defaultBus.Subscribe(event, handler) }

// Publish dispatches on the default bus.
func Publish(event string, payload interface{}) { defaultBus.Publish(event, payload) }

// Reset clears the default bus. Useful in tests.
func Reset() { defaultBus.Reset() }
