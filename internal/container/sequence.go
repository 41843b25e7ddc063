package container

import "sync"

const minSequenceCapacity = 16

// SequenceBuffer is a growable array safe for concurrent append and shrink.
type SequenceBuffer[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewSequenceBuffer creates a buffer with room for capacity items.
func NewSequenceBuffer[T any](capacity int) *SequenceBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &SequenceBuffer[T]{items: make([]T, 0, capacity)}
}

// Append adds items at the end, doubling the backing array when full.
func (s *SequenceBuffer[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	need := len(s.items) + len(items)
	if need > cap(s.items) {
		newCap := max(cap(s.items)*2, minSequenceCapacity)
		for newCap < need {
			newCap *= 2
		}
		grown := make([]T, len(s.items), newCap)
		copy(grown, s.items)
		s.items = grown
	}
	s.items = append(s.items, items...)
}

// Len returns the number of stored items.
func (s *SequenceBuffer[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cap returns the capacity of the backing array.
func (s *SequenceBuffer[T]) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cap(s.items)
}

// At returns the item at index i. ok is false when i is out of range.
func (s *SequenceBuffer[T]) At(i int) (item T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return item, false
	}
	return s.items[i], true
}

// Shrink truncates the buffer to n items. Shrinking to zero releases the
// backing array; shrinking below a quarter of the capacity reallocates.
func (s *SequenceBuffer[T]) Shrink(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n >= len(s.items) {
		return
	}
	if n == 0 {
		s.items = nil
		return
	}
	if n < cap(s.items)/4 {
		smaller := make([]T, n, max(n*2, minSequenceCapacity))
		copy(smaller, s.items[:n])
		s.items = smaller
		return
	}
	var zero T
	for i := n; i < len(s.items); i++ {
		s.items[i] = zero
	}
	s.items = s.items[:n]
}

// Reset drops every item and keeps the backing array for reuse.
func (s *SequenceBuffer[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
	s.items = s.items[:0]
}

// Snapshot returns a copy of the stored items.
func (s *SequenceBuffer[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Each calls fn for every item in order until fn returns false.
// fn must not call back into the buffer.
func (s *SequenceBuffer[T]) Each(fn func(i int, item T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if !fn(i, it) {
			return
		}
	}
}
