package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Event is an immutable fact published on the bus. Implementations are plain
// value types; Kind is the routing key subscribers filter on.
type Event interface {
	Kind() string
}

// Bus is an in-process broadcast channel. Every subscriber gets its own copy
// of each event published after it subscribed, delivered in publish order.
//
// Delivery is lossy by design: each subscription owns a bounded mailbox and
// when it is full the OLDEST queued event is dropped to make room. The bus is
// for best-effort observers; consumers doing durable side effects should
// drain a Queue instead, which never drops.
type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	buffer int
	closed bool
	log    *slog.Logger
}

const defaultBuffer = 64

// NewBus returns a bus whose subscriptions buffer up to buffer events each.
func NewBus(buffer int, log *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus{buffer: buffer, log: log}
}

// Subscription is one subscriber's private, ordered view of the bus.
type Subscription struct {
	bus     *Bus
	kinds   map[string]struct{}
	ch      chan Event
	dropped atomic.Uint64
	once    sync.Once
}

// Events yields this subscriber's received events in FIFO order.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Dropped reports how many events were discarded because the mailbox was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close detaches the subscription from the bus and closes its channel.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

func (s *Subscription) wants(kind string) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[kind]
	return ok
}

// Subscribe attaches a new subscriber. With no kinds it receives every event;
// otherwise only events whose Kind matches one of the given kinds. Events
// published before Subscribe returns are never delivered to this subscriber.
func (b *Bus) Subscribe(kinds ...string) *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan Event, b.buffer),
	}
	if len(kinds) > 0 {
		sub.kinds = make(map[string]struct{}, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = struct{}{}
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

// Publish delivers e to every current matching subscriber and returns without
// waiting on any of them. The producer never learns whether anyone listened.
//
// Delivery runs under the bus lock so all subscribers observe the same
// relative order across publishers; each hand-off is non-blocking, so the
// hold time is bounded by the subscriber count, not by consumer speed.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	publishedTotal.Inc()
	for _, sub := range b.subs {
		if !sub.wants(e.Kind()) {
			continue
		}
		select {
		case sub.ch <- e:
			continue
		default:
		}
		// Mailbox full: drop the oldest queued event, then retry once. The
		// consumer may have raced a receive in between, which only helps.
		select {
		case <-sub.ch:
			sub.dropped.Add(1)
			droppedTotal.Inc()
		default:
		}
		select {
		case sub.ch <- e:
		default:
			sub.dropped.Add(1)
			droppedTotal.Inc()
		}
	}
}

func (b *Bus) unsubscribe(target *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	target.once.Do(func() { close(target.ch) })
}

// Close shuts the bus down. Later publishes are silently discarded and every
// subscription channel is closed so range loops over Events() terminate.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		sub.once.Do(func() { close(sub.ch) })
	}
	b.subs = nil
}
