package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Task is one unit of ordered background work carried by a Queue.
type Task struct {
	Kind    string
	Payload any
}

// Handler processes one task. A returned error triggers a retry with
// exponential backoff; wrap with backoff.Permanent to give up immediately.
type Handler func(ctx context.Context, t Task) error

// Relay is the single consumer of a task queue. It preserves queue order:
// a task is retried in place until it succeeds, is marked permanent, or the
// retry budget runs out; only then does the next task start.
type Relay struct {
	queue   *Queue[Task]
	handler Handler
	log     *slog.Logger

	// RetryInterval seeds the exponential backoff; RetryBudget caps the total
	// time spent on one task before it is abandoned.
	RetryInterval time.Duration
	RetryBudget   time.Duration
}

func NewRelay(q *Queue[Task], h Handler, log *slog.Logger) *Relay {
	return &Relay{
		queue:         q,
		handler:       h,
		log:           log,
		RetryInterval: 500 * time.Millisecond,
		RetryBudget:   30 * time.Second,
	}
}

// Run drains the queue until the context ends or the queue closes empty.
func (r *Relay) Run(ctx context.Context) error {
	for {
		task, err := r.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := r.process(ctx, task); err != nil {
			r.log.Error("task abandoned", "kind", task.Kind, "error", err)
		}
	}
}

func (r *Relay) process(ctx context.Context, task Task) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.RetryInterval
	bo.MaxElapsedTime = r.RetryBudget
	return backoff.Retry(func() error {
		return r.handler(ctx, task)
	}, backoff.WithContext(bo, ctx))
}
