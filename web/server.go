package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosaicfw/mosaic/config"
	"github.com/mosaicfw/mosaic/core"
)

// Server is the HTTP collaborator: it mounts every module's routes under a
// module-namespaced prefix and serves the merged API document. It never
// interprets what the modules contribute.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// Options customize the assembled server.
type Options struct {
	// RootRoutes register handlers outside the module namespace, such as the
	// actuator endpoints.
	RootRoutes []func(r gin.IRouter)
}

type Option func(*Options)

// WithRootRoutes mounts f at the engine root during assembly.
func WithRootRoutes(f func(r gin.IRouter)) Option {
	return func(o *Options) { o.RootRoutes = append(o.RootRoutes, f) }
}

// New assembles the engine from the modules' contributions. Each module's
// routes land under /api/<module name>; the merged OpenAPI document is
// served at /openapi.json.
func New(cfg config.Root, log *slog.Logger, contribs []core.ModuleContribution, opts ...Option) (*Server, error) {
	var options Options
	for _, o := range opts {
		o(&options)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(RecoveryProblem(log))
	engine.Use(AccessLog(log))

	for _, c := range contribs {
		if c.Routes == nil {
			continue
		}
		group := engine.Group("/api/" + c.Module)
		c.Routes(group)
	}
	for _, reg := range options.RootRoutes {
		reg(engine)
	}

	doc, err := MergeOpenAPI(cfg.App, contribs)
	if err != nil {
		return nil, err
	}
	engine.GET("/openapi.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

func (s *Server) ListenAndServe() error { return s.http.ListenAndServe() }

func (s *Server) Shutdown(ctx context.Context) error { return s.http.Shutdown(ctx) }

// Handler exposes the assembled engine, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }
