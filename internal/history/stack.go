// Package history provides the bounded LIFO stack used for undo/redo.
package history

// Stack is a generic LIFO stack backed by a ring buffer.
// When a limit is set and the stack is full, Push evicts the oldest item.
// A limit of 0 means unbounded.
//
// Stack is not safe for concurrent use; its owner is expected to lock.
type Stack[T any] struct {
	buf   []T
	start int // index of the oldest item in ring mode
	n     int
	limit int
}

// NewStack creates an empty stack holding at most limit items.
func NewStack[T any](limit int) *Stack[T] {
	if limit < 0 {
		limit = 0
	}
	return &Stack[T]{limit: limit}
}

// Push adds item on top. It reports whether the oldest item was evicted
// to make room.
func (s *Stack[T]) Push(item T) (evicted bool) {
	if s.limit == 0 {
		s.buf = append(s.buf, item)
		s.n++
		return false
	}

	if s.buf == nil {
		s.buf = make([]T, s.limit)
	}
	if s.n == s.limit {
		var zero T
		s.buf[s.start] = zero
		s.start = (s.start + 1) % s.limit
		s.n--
		evicted = true
	}
	s.buf[(s.start+s.n)%s.limit] = item
	s.n++
	return evicted
}

// Pop removes and returns the top item. ok is false if the stack is empty.
func (s *Stack[T]) Pop() (item T, ok bool) {
	if s.n == 0 {
		return item, false
	}
	idx := s.index(s.n - 1)
	item = s.buf[idx]

	var zero T
	s.buf[idx] = zero
	s.n--
	if s.limit == 0 {
		s.buf = s.buf[:s.n]
	}
	return item, true
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (item T, ok bool) {
	if s.n == 0 {
		return item, false
	}
	return s.buf[s.index(s.n-1)], true
}

// Len returns the number of items on the stack.
func (s *Stack[T]) Len() int {
	return s.n
}

// Limit returns the capacity, 0 if unbounded.
func (s *Stack[T]) Limit() int {
	return s.limit
}

// Empty returns true if the stack has no items.
func (s *Stack[T]) Empty() bool {
	return s.n == 0
}

// Clear removes all items.
func (s *Stack[T]) Clear() {
	if s.limit == 0 {
		s.buf = s.buf[:0]
	} else if s.buf != nil {
		clear(s.buf)
	}
	s.start = 0
	s.n = 0
}

// Items returns a copy of the stack contents, oldest first.
func (s *Stack[T]) Items() []T {
	out := make([]T, s.n)
	for i := range out {
		out[i] = s.buf[s.index(i)]
	}
	return out
}

// index maps a logical position (0 = oldest) to a buffer index.
func (s *Stack[T]) index(i int) int {
	if s.limit == 0 {
		return i
	}
	return (s.start + i) % s.limit
}
