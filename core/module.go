package core

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mosaicfw/mosaic/migrate"
)

// Module is an independently-authored feature unit that participates in the
// process lifecycle. Modules are constructed once at build time, registered
// with a Registry, and driven through init, start, and stop together; they
// never reference each other directly and communicate through the event bus
// in the lifecycle context.
//
// Every hook is optional: embed Base and override what the module needs.
type Module interface {
	// Name is the unique identifier; duplicates are a fatal registration error.
	Name() string

	// Init runs before migrations. The returned Contribution is the only way
	// a module hands routes, API fragments, and migrations to the kernel;
	// there is no side channel. Later modules may rely on resources earlier
	// modules placed into mc.Shared.
	Init(ctx context.Context, mc *Context) (Contribution, error)

	// Start runs after every migration has been applied.
	Start(ctx context.Context, mc *Context) error

	// Stop runs during shutdown, in reverse registration order, under a
	// per-module deadline.
	Stop(ctx context.Context, mc *Context) error
}

// Contribution carries everything a module exposes to its collaborators.
// The kernel passes routes and API fragments through without interpreting
// them; migrations feed the migration planner.
type Contribution struct {
	// Routes registers the module's handlers on a router group that the HTTP
	// collaborator mounts under /api/<module name>.
	Routes func(r gin.IRouter)

	// OpenAPI is a YAML or JSON fragment merged into the served document.
	OpenAPI []byte

	// Migrations are the module's schema changes. The kernel stamps each
	// record with the module's name; modules only set ID and Script.
	Migrations []migrate.Migration
}

// Base provides no-op lifecycle hooks for embedding.
type Base struct{}

func (Base) Init(context.Context, *Context) (Contribution, error) { return Contribution{}, nil }
func (Base) Start(context.Context, *Context) error                { return nil }
func (Base) Stop(context.Context, *Context) error                 { return nil }
