package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Phase is the fleet-wide lifecycle state. Transitions are one-directional:
// Uninitialized -> Initialized -> Started -> Stopped. The whole fleet moves
// together; the orchestrator never advances while any module is mid-phase.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
	PhaseStarted
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	case PhaseStarted:
		return "started"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ModuleContribution pairs a module's name with what its init hook returned.
type ModuleContribution struct {
	Module string
	Contribution
}

// Orchestrator drives every registered module through the lifecycle phases
// sequentially, in registry order. Hooks within a phase never run
// concurrently with each other; ordering and failure attribution are worth
// more here than throughput.
type Orchestrator struct {
	reg   *Registry
	log   *slog.Logger
	phase Phase
}

func NewOrchestrator(reg *Registry, log *slog.Logger) *Orchestrator {
	return &Orchestrator{reg: reg, log: log}
}

// Phase reports the current fleet-wide state.
func (o *Orchestrator) Phase() Phase { return o.phase }

// RunInit invokes every module's init hook in registry order and collects
// their contributions. The first failure aborts the remaining hooks; modules
// that already initialized are left as-is, since stop hooks pair with start
// hooks and nothing has started yet.
//
// Calling RunInit on an orchestrator that already left Uninitialized is a
// programming error and is rejected.
func (o *Orchestrator) RunInit(ctx context.Context, mc *Context) ([]ModuleContribution, error) {
	if o.phase != PhaseUninitialized {
		return nil, &LifecycleError{Phase: "init", Err: fmt.Errorf("invalid transition from phase %s", o.phase)}
	}
	contribs := make([]ModuleContribution, 0, o.reg.Len())
	for _, m := range o.reg.All() {
		contrib, err := m.Init(ctx, mc)
		if err != nil {
			return nil, &LifecycleError{Module: m.Name(), Phase: "init", Err: err}
		}
		for i := range contrib.Migrations {
			contrib.Migrations[i].Module = m.Name()
		}
		contribs = append(contribs, ModuleContribution{Module: m.Name(), Contribution: contrib})
		o.log.Info("module initialized", "module", m.Name(),
			"migrations", len(contrib.Migrations), "routes", contrib.Routes != nil)
	}
	o.phase = PhaseInitialized
	return contribs, nil
}

// RunStart invokes every module's start hook in registry order. It must only
// run after migrations have been applied; same abort semantics as RunInit.
func (o *Orchestrator) RunStart(ctx context.Context, mc *Context) error {
	if o.phase != PhaseInitialized {
		return &LifecycleError{Phase: "start", Err: fmt.Errorf("invalid transition from phase %s", o.phase)}
	}
	for _, m := range o.reg.All() {
		if err := m.Start(ctx, mc); err != nil {
			return &LifecycleError{Module: m.Name(), Phase: "start", Err: err}
		}
		o.log.Info("module started", "module", m.Name())
	}
	o.phase = PhaseStarted
	return nil
}

// RunStop invokes stop hooks in reverse registry order, best-effort: one
// module failing (or blowing its deadline) never prevents the rest of the
// fleet from draining. The aggregate of every failure is returned so the
// operator sees which modules did not stop cleanly.
//
// Stopping from Initialized is allowed so a startup that failed between init
// and start can still unwind.
func (o *Orchestrator) RunStop(mc *Context, moduleTimeout time.Duration) error {
	if o.phase != PhaseStarted && o.phase != PhaseInitialized {
		return &LifecycleError{Phase: "stop", Err: fmt.Errorf("invalid transition from phase %s", o.phase)}
	}
	mods := o.reg.All()
	var failures []error
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		if err := o.stopOne(m, mc, moduleTimeout); err != nil {
			lerr := &LifecycleError{Module: m.Name(), Phase: "stop", Err: err}
			o.log.Error("module stop failed", "module", m.Name(), "error", err)
			failures = append(failures, lerr)
			continue
		}
		o.log.Info("module stopped", "module", m.Name())
	}
	o.phase = PhaseStopped
	return errors.Join(failures...)
}

// stopOne runs a single stop hook under its deadline. A hook that ignores its
// context cannot be interrupted, so the wait is bounded here and the hook's
// goroutine is abandoned; the process is exiting anyway.
func (o *Orchestrator) stopOne(m Module, mc *Context, timeout time.Duration) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Stop(stopCtx, mc)
	}()
	select {
	case err := <-done:
		return err
	case <-stopCtx.Done():
		return fmt.Errorf("stop hook exceeded %s deadline", timeout)
	}
}
