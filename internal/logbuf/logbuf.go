// Package logbuf keeps the most recent live events for one console surface.
package logbuf

import (
	"sync"

	"github.com/naveenspark/nexus/pkg/domain"
)

// Capacities used by the console surfaces.
const (
	LiveLogCapacity  = 150
	CeremonyCapacity = 100
)

// Source delivers live events to subscribers. *relay.Relay implements it.
type Source interface {
	Subscribe(onEvent func(domain.LiveEvent)) (unsubscribe func())
}

// Buffer is a fixed-capacity, newest-first event log. Push is O(1);
// the oldest event is evicted once the buffer is full.
type Buffer struct {
	mu    sync.RWMutex
	ring  []domain.LiveEvent
	head  int // index of the newest event
	count int
}

// New returns an empty buffer holding at most capacity events.
// capacity < 1 is treated as 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{ring: make([]domain.LiveEvent, capacity), head: -1}
}

// Push records ev as the newest event.
func (b *Buffer) Push(ev domain.LiveEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = (b.head + 1) % len(b.ring)
	b.ring[b.head] = ev
	if b.count < len(b.ring) {
		b.count++
	}
}

// Snapshot returns the buffered events, newest first.
func (b *Buffer) Snapshot() []domain.LiveEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.LiveEvent, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.ring[(b.head-i+len(b.ring))%len(b.ring)]
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.ring)
}

// Attach subscribes the buffer to src. notify, when non-nil, runs after
// every push so the owning surface can re-render. The returned detach
// releases the subscription and must be called when the surface unmounts.
func (b *Buffer) Attach(src Source, notify func()) (detach func()) {
	return src.Subscribe(func(ev domain.LiveEvent) {
		b.Push(ev)
		if notify != nil {
			notify()
		}
	})
}
