// Package events provides a small observer registry used to deliver
// background results to whoever is listening.
package events

import "sync"

// Signal delivers values of type T to connected slots. The zero value is
// ready to use.
type Signal[T any] struct {
	mu    sync.Mutex
	next  int
	slots []slot[T]
}

type slot[T any] struct {
	id int
	fn func(T)
}

// Connect registers fn and returns a function that disconnects it.
// Disconnecting more than once is a no-op.
func (s *Signal[T]) Connect(fn func(T)) (disconnect func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.slots = append(s.slots, slot[T]{id: id, fn: fn})
	return func() { s.disconnect(id) }
}

func (s *Signal[T]) disconnect(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl.id == id {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}

// Emit calls every connected slot in connection order. Slots may connect or
// disconnect during delivery; those changes apply to the next Emit.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	slots := make([]slot[T], len(s.slots))
	copy(slots, s.slots)
	s.mu.Unlock()

	for _, sl := range slots {
		sl.fn(v)
	}
}

// Len reports the number of connected slots.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
