package poller

import (
	"context"
	"sync"
	"sync/atomic"
)

// ListenerID identifies a registered signal handler.
type ListenerID uint64

type listener[T any] struct {
	id      ListenerID
	fn      func(ctx context.Context, v T)
	removed atomic.Bool
}

// signal delivers values synchronously to its listeners in registration order.
type signal[T any] struct {
	mu        sync.RWMutex
	listeners []*listener[T]
}

func (s *signal[T]) add(id ListenerID, fn func(ctx context.Context, v T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, &listener[T]{id: id, fn: fn})
}

func (s *signal[T]) remove(id ListenerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l.id == id {
			l.removed.Store(true)
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (s *signal[T]) emit(ctx context.Context, v T) {
	s.mu.RLock()
	snapshot := s.listeners
	s.mu.RUnlock()

	for _, l := range snapshot {
		// A listener removed by an earlier handler of this emission, or
		// concurrently, must not see the value.
		if l.removed.Load() {
			continue
		}
		l.fn(ctx, v)
	}
}

func (s *signal[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}
