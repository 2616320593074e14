package resource

import "sync"

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Dropper is optionally implemented by resource values that need cleanup
// when removed from the table.
type Dropper interface {
	Drop()
}

// Table maps opaque handles to values of one type. Engines use it to hand
// out integer tokens for compiled models while keeping the real state on
// this side of the boundary.
//
// A value is removed at most once; Remove on an unknown or already
// removed handle reports false and has no effect.
type Table[T any] struct {
	mu     sync.RWMutex
	values map[Handle]T
	next   Handle
	closed bool
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		values: make(map[Handle]T),
	}
}

// Insert stores value and returns its handle. Returns 0 when the table is
// closed.
func (t *Table[T]) Insert(value T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}

	t.next++
	if t.next == 0 {
		t.next = 1
	}
	h := t.next
	t.values[h] = value
	return h
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[h]
	return v, ok
}

// Remove drops a resource and returns (value, true) if it was present.
// Values implementing Dropper get Drop() called exactly once, after the
// entry is gone from the table.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	t.mu.Lock()
	v, ok := t.values[h]
	if ok {
		delete(t.values, h)
	}
	t.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	if d, isDropper := any(v).(Dropper); isDropper {
		d.Drop()
	}
	return v, true
}

// Len returns the number of active resources.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Each calls fn for every active resource until fn returns false.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for h, v := range t.values {
		if !fn(h, v) {
			return
		}
	}
}

// Close drops all resources and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	values := t.values
	t.values = make(map[Handle]T)
	t.closed = true
	t.mu.Unlock()

	for _, v := range values {
		if d, ok := any(v).(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}
