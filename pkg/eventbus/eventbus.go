// Package eventbus provides in-process pub/sub for transaction lifecycle
// events. Consumers hang off the orchestrator without coupling it to
// notification or alerting concerns.
package eventbus

import (
	"context"
	"sync"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
)

// Bus is the contract for publishing and subscribing to wallet events.
type Bus interface {
	Publish(ctx context.Context, event wallet.Event)
	Subscribe(eventType string, handler func(context.Context, wallet.Event))
}

// Memory is a synchronous in-process Bus. Handlers run on the publisher's
// goroutine; anything slow belongs in the handler's own goroutine.
type Memory struct {
	mu       sync.RWMutex
	handlers map[string][]func(context.Context, wallet.Event)
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{handlers: make(map[string][]func(context.Context, wallet.Event))}
}

// Publish delivers the event to every handler subscribed to its type.
func (b *Memory) Publish(ctx context.Context, event wallet.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, handler := range b.handlers[event.EventType()] {
		handler(ctx, event)
	}
}

// Subscribe registers a handler for one event type.
func (b *Memory) Subscribe(eventType string, handler func(context.Context, wallet.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
