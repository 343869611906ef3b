// Package events fans visit records out to subscribers: the SSE endpoint,
// WebSocket clients, and the visit log writer.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/dgnsrekt/trail_agent/internal/types"
)

const subscriberBufSize = 256

// Broker fans out accepted visits to all subscribers. Publishing never
// blocks; slow consumers have visits dropped.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan types.VisitPayload
	nextID      atomic.Int64
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan types.VisitPayload),
	}
}

// Subscribe registers a consumer. Returns the subscriber ID and a buffered
// channel of visits.
func (b *Broker) Subscribe() (int64, <-chan types.VisitPayload) {
	id := b.nextID.Add(1)
	ch := make(chan types.VisitPayload, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers a visit to every subscriber that has buffer room.
func (b *Broker) Publish(visit types.VisitPayload) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- visit:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
