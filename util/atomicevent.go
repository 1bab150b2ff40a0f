// Package util holds small concurrency helpers shared by the simulator, the
// animation loop and the terminal viewer.
package util

import (
	"context"
	"sync"
)

// AtomicEvent keeps the latest value published by a producer and wakes a
// single consumer without ever blocking the producer. Intermediate values
// are dropped when the consumer is slower than the producer.
type AtomicEvent[T any] struct {
	mu     sync.Mutex
	value  T
	seq    uint64
	notify chan struct{} // capacity 1
}

func NewAtomicEvent[T any]() *AtomicEvent[T] {
	return &AtomicEvent[T]{
		notify: make(chan struct{}, 1),
	}
}

// Send stores event as the latest value. It never blocks.
func (ae *AtomicEvent[T]) Send(event T) {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	ae.value = event
	ae.seq++

	select {
	case ae.notify <- struct{}{}:
	default:
		// a wakeup is already pending
	}
}

// Channel returns the wakeup channel for use in select statements.
func (ae *AtomicEvent[T]) Channel() <-chan struct{} {
	return ae.notify
}

func (ae *AtomicEvent[T]) Value() T {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.value
}

// Seq returns the number of values sent so far together with the latest
// value.
func (ae *AtomicEvent[T]) Seq() (uint64, T) {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.seq, ae.value
}

// HasPending reports whether a wakeup is waiting to be consumed.
func (ae *AtomicEvent[T]) HasPending() bool {
	return len(ae.notify) > 0
}

// Wait blocks until a value is sent or ctx is done and returns the latest
// value.
func (ae *AtomicEvent[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ae.notify:
		return ae.Value(), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
