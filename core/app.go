package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mosaicfw/mosaic/config"
	"github.com/mosaicfw/mosaic/db"
	"github.com/mosaicfw/mosaic/events"
	"github.com/mosaicfw/mosaic/migrate"
)

// HTTPServer is the boundary with the transport collaborator. The kernel
// starts it only after every module has started, and shuts it down before
// any module stops, so request handlers always see a started fleet and a
// post-migration schema.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// ServerBuilder assembles the transport from the modules' contributions.
// The kernel passes routes and API fragments through untouched.
type ServerBuilder func(cfg config.Root, log *slog.Logger, mc *Context, contribs []ModuleContribution) (HTTPServer, error)

// App is the composition root: an explicit, reviewable list of modules plus
// the collaborators the kernel wires around them. There is no discovery
// step; the entry point that constructs the App decides the module order.
type App struct {
	cfg    config.Root
	log    *slog.Logger
	reg    *Registry
	orch   *Orchestrator
	server ServerBuilder
}

// NewApp registers the given modules in order. A registration failure (for
// example a duplicate name) aborts composition immediately.
func NewApp(cfg config.Root, log *slog.Logger, mods ...Module) (*App, error) {
	reg := NewRegistry()
	for _, m := range mods {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return &App{
		cfg:  cfg,
		log:  log,
		reg:  reg,
		orch: NewOrchestrator(reg, log),
	}, nil
}

// UseServer installs the HTTP collaborator. Without one the app runs
// headless, which is what the migration commands use.
func (a *App) UseServer(b ServerBuilder) { a.server = b }

// Registry exposes the composed module set.
func (a *App) Registry() *Registry { return a.reg }

// Phase reports the fleet-wide lifecycle state.
func (a *App) Phase() Phase { return a.orch.Phase() }

// bootstrap opens the shared collaborators, builds the lifecycle context,
// and runs the init phase. The caller owns closing mc.DB.
func (a *App) bootstrap(ctx context.Context) (*Context, []ModuleContribution, error) {
	pool, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	mc := &Context{
		Config: a.cfg,
		DB:     pool,
		Bus:    events.NewBus(a.cfg.Events.BusBuffer, a.log),
		Tasks:  events.NewQueue[events.Task](a.cfg.Events.QueueCapacity),
		Log:    a.log,
		Shared: NewContainer(),
	}
	contribs, err := a.orch.RunInit(ctx, mc)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return mc, contribs, nil
}

func collectMigrations(contribs []ModuleContribution) []migrate.Migration {
	var records []migrate.Migration
	for _, c := range contribs {
		records = append(records, c.Migrations...)
	}
	return records
}

// MigratePlan runs init to gather every declared migration and returns the
// canonical plan without applying anything or starting modules.
func (a *App) MigratePlan(ctx context.Context) (*migrate.Plan, error) {
	mc, contribs, err := a.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	defer mc.DB.Close()
	defer mc.Bus.Close()

	store, err := migrate.NewSQLStore(ctx, mc.DB)
	if err != nil {
		return nil, err
	}
	return migrate.NewPlan(ctx, store, collectMigrations(contribs))
}

// MigrateApply applies every pending migration and reports how many ran.
// Modules are initialized but never started.
func (a *App) MigrateApply(ctx context.Context) (*migrate.Plan, int, error) {
	mc, contribs, err := a.bootstrap(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer mc.DB.Close()
	defer mc.Bus.Close()

	store, err := migrate.NewSQLStore(ctx, mc.DB)
	if err != nil {
		return nil, 0, err
	}
	plan, err := migrate.NewPlan(ctx, store, collectMigrations(contribs))
	if err != nil {
		return nil, 0, err
	}
	applied, err := migrate.NewRunner(store, a.log).Apply(ctx, plan.Pending)
	return plan, applied, err
}

// Run drives the full lifetime: init, migrate, start, serve until the
// context ends, then stop in reverse order. Any startup failure aborts and
// surfaces the module or migration that caused it; shutdown failures are
// aggregated but never cut shutdown short.
func (a *App) Run(ctx context.Context) error {
	mc, contribs, err := a.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer mc.DB.Close()
	defer mc.Tasks.Close()
	defer mc.Bus.Close()

	store, err := migrate.NewSQLStore(ctx, mc.DB)
	if err != nil {
		return err
	}
	plan, err := migrate.NewPlan(ctx, store, collectMigrations(contribs))
	if err != nil {
		return err
	}
	a.log.Info("migration plan computed", "applied", len(plan.Applied), "pending", len(plan.Pending))
	if _, err := migrate.NewRunner(store, a.log).Apply(ctx, plan.Pending); err != nil {
		return err
	}

	var srv HTTPServer
	if a.server != nil {
		srv, err = a.server(a.cfg, a.log, mc, contribs)
		if err != nil {
			return err
		}
	}

	if err := a.orch.RunStart(ctx, mc); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	if srv != nil {
		go func() { serverErr <- srv.ListenAndServe() }()
		a.log.Info("http server listening", "addr", a.cfg.Server.Addr)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signaled")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.ModuleTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("http server shutdown failed", "error", err)
		}
		cancel()
	}

	stopErr := a.orch.RunStop(mc, a.cfg.Shutdown.ModuleTimeout)
	if stopErr != nil {
		a.log.Error("shutdown finished with failures", "error", stopErr)
	}
	if runErr != nil {
		return runErr
	}
	return stopErr
}
