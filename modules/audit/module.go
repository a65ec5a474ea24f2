package audit

import (
	"context"
	"sync"

	"github.com/mosaicfw/mosaic/core"
	"github.com/mosaicfw/mosaic/events"
)

const Name = "audit"

// module is a best-effort observer: it subscribes to every bus event and
// logs it, and drains the background task queue through a relay. It has no
// routes and no migrations, and no other module knows it exists.
type module struct {
	core.Base
	sub    *events.Subscription
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New() core.Module { return &module{} }

func (m *module) Name() string { return Name }

// Init subscribes before any module starts, so nothing published during
// steady state is missed.
func (m *module) Init(ctx context.Context, mc *core.Context) (core.Contribution, error) {
	m.sub = mc.Bus.Subscribe()
	return core.Contribution{}, nil
}

func (m *module) Start(ctx context.Context, mc *core.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		for e := range m.sub.Events() {
			mc.Log.Info("audit event", "kind", e.Kind())
		}
	}()
	relay := events.NewRelay(mc.Tasks, func(ctx context.Context, t events.Task) error {
		mc.Log.Info("audit task", "kind", t.Kind)
		return nil
	}, mc.Log)
	go func() {
		defer m.wg.Done()
		_ = relay.Run(runCtx)
	}()
	return nil
}

func (m *module) Stop(ctx context.Context, mc *core.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.sub != nil {
		m.sub.Close()
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
