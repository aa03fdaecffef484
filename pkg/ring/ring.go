// Package ring provides a fixed-capacity circular buffer with an
// overwrite-on-full policy: pushing never blocks and never fails, at the
// price of silently discarding the oldest unread element when the buffer is
// full. Capacity is chosen so that loss only occurs under pipeline stall.
//
// A Buffer created with [NewGuarded] serializes Push, Pop, Len and Clear
// behind a single coarse mutex and is safe for concurrent producers and
// consumers. A Buffer created with [New] performs no locking.
package ring

import "sync"

// Buffer is a fixed-capacity ring. head counts writes and tail counts reads;
// both increase monotonically and are reduced to a storage index only on
// access, so head == tail means empty and head-tail is the unread length.
// There is no distinguishable "full" state: a push into a full buffer
// advances tail as well, overwriting the oldest unread element. Callers that
// need loss detection must track sequence numbers externally.
type Buffer[T any] struct {
	mu   *sync.Mutex // nil when unguarded
	buf  []T
	head int64 // next write position
	tail int64 // next read position
	mask int64 // capacity-1 when capacity is a power of two, else 0
}

// New creates an unguarded Buffer with the given capacity. It panics when
// capacity is not positive; buffer sizing is a construction-time
// configuration decision and is always fatal when wrong.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	b := &Buffer[T]{buf: make([]T, capacity)}
	if capacity&(capacity-1) == 0 {
		b.mask = int64(capacity - 1)
	}
	return b
}

// NewGuarded creates a Buffer whose operations each hold one mutex for their
// entire body, making it safe for multi-producer multi-consumer use.
func NewGuarded[T any](capacity int) *Buffer[T] {
	b := New[T](capacity)
	b.mu = &sync.Mutex{}
	return b
}

// wrap reduces a monotonic position to a storage index. The bitmask form is
// used when the capacity is a power of two.
func (b *Buffer[T]) wrap(pos int64) int64 {
	if b.mask != 0 {
		return pos & b.mask
	}
	return pos % int64(len(b.buf))
}

// Push appends v, overwriting the oldest unread element when the buffer is
// full. It is O(1) and always succeeds. Slice-backed payloads are stored by
// assignment; the caller is handing over ownership, not sharing it.
func (b *Buffer[T]) Push(v T) {
	if b.mu != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
	}

	b.buf[b.wrap(b.head)] = v
	b.head++
	if b.head-b.tail > int64(len(b.buf)) {
		b.tail++
	}
}

// Pop removes and returns the oldest unread element. The second return is
// false when no unread element exists. The vacated slot is zeroed so popped
// payloads do not alias live buffer storage.
func (b *Buffer[T]) Pop() (T, bool) {
	if b.mu != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
	}

	var zero T
	if b.head == b.tail {
		return zero, false
	}
	i := b.wrap(b.tail)
	v := b.buf[i]
	b.buf[i] = zero
	b.tail++
	return v, true
}

// Len reports the number of unread elements.
func (b *Buffer[T]) Len() int {
	if b.mu != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
	}
	return int(b.head - b.tail)
}

// Cap reports the fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.buf) }

// Clear resets the read and write positions without zeroing the storage;
// existing content becomes eligible for overwrite, not erased.
func (b *Buffer[T]) Clear() {
	if b.mu != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
	}

	b.head = 0
	b.tail = 0
}
