package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mosaicfw/mosaic/core"
	"github.com/mosaicfw/mosaic/migrate"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hookModule records which hooks ran and can fail or hang on demand.
type hookModule struct {
	name       string
	calls      *[]string
	initErr    error
	startErr   error
	stopErr    error
	stopDelay  time.Duration
	migrations []migrate.Migration
}

func (m *hookModule) Name() string { return m.name }

func (m *hookModule) Init(ctx context.Context, mc *core.Context) (core.Contribution, error) {
	*m.calls = append(*m.calls, m.name+".init")
	if m.initErr != nil {
		return core.Contribution{}, m.initErr
	}
	return core.Contribution{Migrations: m.migrations}, nil
}

func (m *hookModule) Start(ctx context.Context, mc *core.Context) error {
	*m.calls = append(*m.calls, m.name+".start")
	return m.startErr
}

func (m *hookModule) Stop(ctx context.Context, mc *core.Context) error {
	*m.calls = append(*m.calls, m.name+".stop")
	if m.stopDelay > 0 {
		// Deliberately ignores ctx: models a hook that cannot be interrupted.
		time.Sleep(m.stopDelay)
	}
	return m.stopErr
}

func newFleet(t *testing.T, mods ...core.Module) *core.Orchestrator {
	t.Helper()
	reg := core.NewRegistry()
	for _, m := range mods {
		if err := reg.Register(m); err != nil {
			t.Fatalf("Register(%q) error = %v", m.Name(), err)
		}
	}
	return core.NewOrchestrator(reg, discard())
}

func TestOrchestrator_InitAbortsOnFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	a := &hookModule{name: "a", calls: &calls}
	b := &hookModule{name: "b", calls: &calls, initErr: boom}
	c := &hookModule{name: "c", calls: &calls}
	orch := newFleet(t, a, b, c)

	_, err := orch.RunInit(context.Background(), &core.Context{})
	var lerr *core.LifecycleError
	if !errors.As(err, &lerr) {
		t.Fatalf("RunInit error = %v, want LifecycleError", err)
	}
	if lerr.Module != "b" || lerr.Phase != "init" {
		t.Errorf("LifecycleError = {%s %s}, want {b init}", lerr.Module, lerr.Phase)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error chain lost the hook's cause: %v", err)
	}

	// a initialized before the failure; c was never reached.
	want := []string{"a.init", "b.init"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestOrchestrator_InitStampsMigrationOwner(t *testing.T) {
	var calls []string
	m := &hookModule{name: "books", calls: &calls, migrations: []migrate.Migration{
		{ID: "0001_init", Script: "CREATE TABLE t(x);"},
	}}
	orch := newFleet(t, m)

	contribs, err := orch.RunInit(context.Background(), &core.Context{})
	if err != nil {
		t.Fatalf("RunInit error = %v", err)
	}
	if got := contribs[0].Migrations[0].Module; got != "books" {
		t.Errorf("migration owner = %q, want %q", got, "books")
	}
}

func TestOrchestrator_PhaseReplayIsRejected(t *testing.T) {
	var calls []string
	orch := newFleet(t, &hookModule{name: "a", calls: &calls})
	mc := &core.Context{}

	if _, err := orch.RunInit(context.Background(), mc); err != nil {
		t.Fatalf("RunInit error = %v", err)
	}
	if _, err := orch.RunInit(context.Background(), mc); err == nil {
		t.Fatal("second RunInit succeeded, want invalid transition error")
	}
	if err := orch.RunStart(context.Background(), mc); err != nil {
		t.Fatalf("RunStart error = %v", err)
	}
	if err := orch.RunStart(context.Background(), mc); err == nil {
		t.Fatal("second RunStart succeeded, want invalid transition error")
	}
}

func TestOrchestrator_StartRequiresInit(t *testing.T) {
	var calls []string
	orch := newFleet(t, &hookModule{name: "a", calls: &calls})
	if err := orch.RunStart(context.Background(), &core.Context{}); err == nil {
		t.Fatal("RunStart before RunInit succeeded, want error")
	}
}

func TestOrchestrator_StopIsBestEffortReverseOrder(t *testing.T) {
	var calls []string
	failStop := errors.New("will not stop")
	m1 := &hookModule{name: "m1", calls: &calls}
	m2 := &hookModule{name: "m2", calls: &calls, stopErr: failStop}
	m3 := &hookModule{name: "m3", calls: &calls}
	orch := newFleet(t, m1, m2, m3)
	mc := &core.Context{}

	if _, err := orch.RunInit(context.Background(), mc); err != nil {
		t.Fatalf("RunInit error = %v", err)
	}
	if err := orch.RunStart(context.Background(), mc); err != nil {
		t.Fatalf("RunStart error = %v", err)
	}
	calls = nil

	err := orch.RunStop(mc, time.Second)
	if err == nil {
		t.Fatal("RunStop = nil, want aggregate naming m2")
	}

	// All three stop hooks ran, last-started first.
	want := []string{"m3.stop", "m2.stop", "m1.stop"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}

	var lerr *core.LifecycleError
	if !errors.As(err, &lerr) || lerr.Module != "m2" {
		t.Errorf("aggregate error = %v, want to name m2", err)
	}
	if !errors.Is(err, failStop) {
		t.Errorf("aggregate lost m2's cause: %v", err)
	}
	if orch.Phase() != core.PhaseStopped {
		t.Errorf("Phase() = %v, want stopped", orch.Phase())
	}
}

func TestOrchestrator_StopHookDeadline(t *testing.T) {
	var calls []string
	slow := &hookModule{name: "slow", calls: &calls, stopDelay: 5 * time.Second}
	fast := &hookModule{name: "fast", calls: &calls}
	orch := newFleet(t, fast, slow)
	mc := &core.Context{}

	if _, err := orch.RunInit(context.Background(), mc); err != nil {
		t.Fatalf("RunInit error = %v", err)
	}
	if err := orch.RunStart(context.Background(), mc); err != nil {
		t.Fatalf("RunStart error = %v", err)
	}

	start := time.Now()
	err := orch.RunStop(mc, 50*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("RunStop took %v, deadline was not enforced", elapsed)
	}
	var lerr *core.LifecycleError
	if !errors.As(err, &lerr) || lerr.Module != "slow" {
		t.Errorf("RunStop error = %v, want deadline failure naming slow", err)
	}
}
