package permissions

import "sync"

// Source yields the current value of an input that may change over time.
type Source[T any] interface {
	Get() T
}

// Notifier is implemented by sources that announce changes to their value.
type Notifier interface {
	Subscribe(fn func()) (cancel func())
}

// Static is a Source whose value never changes.
type Static[T any] struct {
	Value T
}

// StaticSource wraps a fixed value.
func StaticSource[T any](value T) Static[T] {
	return Static[T]{Value: value}
}

// Get returns the wrapped value.
func (s Static[T]) Get() T {
	return s.Value
}

// Ref is a settable Source that notifies subscribers when its value changes.
type Ref[T comparable] struct {
	mu          sync.RWMutex
	value       T
	nextID      int
	subscribers map[int]func()
}

// NewRef constructs a Ref holding the initial value.
func NewRef[T comparable](initial T) *Ref[T] {
	return &Ref[T]{
		value:       initial,
		subscribers: make(map[int]func()),
	}
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.value
}

// Set stores a new value. Subscribers run only when the value actually changed and are
// invoked after the lock is released, so they may read the Ref again.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	if r.value == value {
		r.mu.Unlock()
		return
	}
	r.value = value
	fns := make([]func(), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers fn to run after every change. The returned function removes it.
func (r *Ref[T]) Subscribe(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.subscribers[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subscribers, id)
	}
}
