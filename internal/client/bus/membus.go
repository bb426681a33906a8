package bus

import "sync"

const defaultBufferSize = 16

// MemBus is the in-process Bus implementation.
type MemBus struct {
	mu      sync.RWMutex
	subs    []*memSub
	bufSize int
	closed  bool
}

// NewMemBus creates an in-process bus. bufSize <= 0 selects the default
// per-subscriber buffer.
func NewMemBus(bufSize int) *MemBus {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &MemBus{bufSize: bufSize}
}

// Publish sends the event to every live subscriber. Events for subscribers
// with a full buffer are dropped; a missed credential-change is recovered on
// the next one because handlers re-read storage rather than apply deltas.
func (b *MemBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		sub.send(event)
	}
}

func (b *MemBus) Subscribe() Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newMemSub(b.bufSize)
	if b.closed {
		sub.close()
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

func (b *MemBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, sub := range b.subs {
		sub.close()
	}
	b.subs = nil
	return nil
}

type memSub struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func newMemSub(bufSize int) *memSub {
	return &memSub{ch: make(chan Event, bufSize)}
}

func (s *memSub) Events() <-chan Event {
	return s.ch
}

func (s *memSub) Close() error {
	s.close()
	return nil
}

func (s *memSub) send(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- event:
	default:
		// Buffer full: drop.
	}
}

func (s *memSub) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
