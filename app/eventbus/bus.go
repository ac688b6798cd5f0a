// Package eventbus broadcasts failed API requests to interested subscribers,
// typically a toast presenter.
package eventbus

import (
	"sync"
)

type HTTPError struct {
	Status  int
	Path    string
	Method  string
	Message string
}

type Handler func(HTTPError)

type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
}

func New() *Bus {
	return &Bus{handlers: map[uint64]Handler{}}
}

var defaultBus = New()

// Default returns the process-wide bus.
func Default() *Bus {
	return defaultBus
}

// Subscribe registers h and returns the function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers evt synchronously to every current subscriber.
func (b *Bus) Publish(evt HTTPError) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

func (b *Bus) subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
