package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicfw/mosaic/events"
)

func TestRelay_ProcessesTasksInOrder(t *testing.T) {
	q := events.NewQueue[events.Task](8)
	var mu sync.Mutex
	var seen []string
	relay := events.NewRelay(q, func(ctx context.Context, task events.Task) error {
		mu.Lock()
		seen = append(seen, task.Kind)
		mu.Unlock()
		return nil
	}, discard())

	done := make(chan error, 1)
	go func() { done <- relay.Run(context.Background()) }()

	for _, kind := range []string{"one", "two", "three"} {
		require.NoError(t, q.Enqueue(context.Background(), events.Task{Kind: kind}))
	}
	q.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after queue close")
	}
	assert.Equal(t, []string{"one", "two", "three"}, seen)
}

func TestRelay_RetriesUntilSuccess(t *testing.T) {
	q := events.NewQueue[events.Task](1)
	var mu sync.Mutex
	attempts := 0
	relay := events.NewRelay(q, func(ctx context.Context, task events.Task) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, discard())
	relay.RetryInterval = time.Millisecond
	relay.RetryBudget = time.Second

	done := make(chan error, 1)
	go func() { done <- relay.Run(context.Background()) }()

	require.NoError(t, q.Enqueue(context.Background(), events.Task{Kind: "flaky"}))
	q.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not finish")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestRelay_PermanentErrorSkipsRetry(t *testing.T) {
	q := events.NewQueue[events.Task](1)
	var mu sync.Mutex
	attempts := 0
	relay := events.NewRelay(q, func(ctx context.Context, task events.Task) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return backoff.Permanent(errors.New("bad payload"))
	}, discard())
	relay.RetryInterval = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- relay.Run(context.Background()) }()

	require.NoError(t, q.Enqueue(context.Background(), events.Task{Kind: "poison"}))
	q.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not finish")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts)
}

func TestRelay_StopsOnContextCancel(t *testing.T) {
	q := events.NewQueue[events.Task](1)
	defer q.Close()
	relay := events.NewRelay(q, func(ctx context.Context, task events.Task) error {
		return nil
	}, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop on cancel")
	}
}
