// Package events provides the in-process broadcast channel that page
// handlers and the gamification engine use to signal data changes.
package events

import "sync"

// TasksChanged signals that the task collection was mutated
type TasksChanged struct{}

// GamificationUpdate signals that points or level changed
type GamificationUpdate struct {
	Level  int
	Points int
}

// Event is any broadcast payload
type Event any

// Handler receives published events
type Handler func(Event)

// Bus is a synchronous in-process publish/subscribe channel. Handlers run
// in subscription order on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every subscriber
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
