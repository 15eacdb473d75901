package logbuf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/nexus/pkg/domain"
)

func event(i int) domain.LiveEvent {
	return domain.LiveEvent{AuthorTag: fmt.Sprintf("user%d", i), Content: fmt.Sprintf("msg %d", i)}
}

func TestBufferHoldsMostRecentNewestFirst(t *testing.T) {
	for _, capacity := range []int{1, 3, 100, 150} {
		for _, pushes := range []int{0, 1, capacity - 1, capacity, capacity + 1, 3*capacity + 7} {
			t.Run(fmt.Sprintf("cap%d_push%d", capacity, pushes), func(t *testing.T) {
				b := New(capacity)
				for i := 0; i < pushes; i++ {
					b.Push(event(i))
					require.LessOrEqual(t, b.Len(), capacity)
				}

				want := pushes
				if want > capacity {
					want = capacity
				}
				snap := b.Snapshot()
				require.Len(t, snap, want)
				for i, ev := range snap {
					assert.Equal(t, event(pushes-1-i), ev, "position %d", i)
				}
			})
		}
	}
}

func TestBufferDuplicatesAreDistinctEvents(t *testing.T) {
	b := New(5)
	ev := domain.LiveEvent{AuthorTag: "same", Content: "same"}
	b.Push(ev)
	b.Push(ev)
	assert.Equal(t, 2, b.Len())
}

func TestNewClampsCapacity(t *testing.T) {
	b := New(0)
	assert.Equal(t, 1, b.Cap())
	b.Push(event(1))
	b.Push(event(2))
	assert.Equal(t, []domain.LiveEvent{event(2)}, b.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New(2)
	b.Push(event(1))
	snap := b.Snapshot()
	snap[0].Content = "mutated"
	assert.Equal(t, "msg 1", b.Snapshot()[0].Content)
}

type fakeSource struct {
	mu   sync.Mutex
	subs map[int]func(domain.LiveEvent)
	next int
}

func (s *fakeSource) Subscribe(fn func(domain.LiveEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(domain.LiveEvent))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *fakeSource) emit(ev domain.LiveEvent) {
	s.mu.Lock()
	subs := make([]func(domain.LiveEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func TestAttachedBuffersReceiveIndependently(t *testing.T) {
	src := &fakeSource{}
	live := New(LiveLogCapacity)
	ceremony := New(CeremonyCapacity)

	notified := 0
	detachLive := live.Attach(src, func() { notified++ })
	detachCeremony := ceremony.Attach(src, nil)

	src.emit(event(1))
	assert.Equal(t, 1, live.Len())
	assert.Equal(t, 1, ceremony.Len())
	assert.Equal(t, 1, notified)

	detachCeremony()
	src.emit(event(2))
	assert.Equal(t, 2, live.Len())
	assert.Equal(t, 1, ceremony.Len(), "detached buffer must stop receiving")

	detachLive()
	src.emit(event(3))
	assert.Equal(t, 2, live.Len())
	assert.Empty(t, src.subs)
}
