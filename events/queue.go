package events

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrFull is returned by TryEnqueue when the queue is at capacity.
	ErrFull = errors.New("queue is full")
	// ErrClosed is returned once the queue has been closed and drained.
	ErrClosed = errors.New("queue is closed")
)

// Queue is a bounded FIFO for single-consumer ordered task delivery, the
// counterpart to the lossy broadcast Bus: nothing is ever dropped, producers
// feel the bound instead. Enqueue blocks until there is room (or the context
// ends); callers that must not block use TryEnqueue and handle ErrFull.
// Multiple producers are fine; only one goroutine may call Dequeue.
type Queue[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// NewQueue returns a queue holding at most capacity items.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue appends v, blocking while the queue is at capacity.
func (q *Queue[T]) Enqueue(ctx context.Context, v T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- v:
		queueDepth.Set(float64(len(q.ch)))
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue appends v without blocking, returning ErrFull at capacity.
func (q *Queue[T]) TryEnqueue(v T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- v:
		queueDepth.Set(float64(len(q.ch)))
		return nil
	default:
		return ErrFull
	}
}

// Dequeue removes the oldest item, blocking until one is available. After
// Close it keeps returning buffered items until the queue is drained, then
// reports ErrClosed.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-q.ch:
		queueDepth.Set(float64(len(q.ch)))
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-q.done:
		select {
		case v := <-q.ch:
			queueDepth.Set(float64(len(q.ch)))
			return v, nil
		default:
			return zero, ErrClosed
		}
	}
}

// Len reports how many items are waiting.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Close stops new enqueues. Buffered items remain dequeueable.
func (q *Queue[T]) Close() {
	q.once.Do(func() { close(q.done) })
}
