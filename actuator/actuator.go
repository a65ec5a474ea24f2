package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mosaicfw/mosaic/core"
)

// Routes exposes the operational endpoints at the configured base path:
// /health pings the database, /info reports process and fleet state, and
// /metrics serves prometheus when enabled. These live outside the module
// namespace since they describe the process, not a feature unit.
func Routes(mc *core.Context, phase func() core.Phase, modules []string) func(r gin.IRouter) {
	return func(r gin.IRouter) {
		cfg := mc.Config
		group := r.Group(cfg.Actuator.BasePath)

		group.GET("/health", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := mc.DB.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "DOWN",
					"checks": []gin.H{{"name": "database", "status": "DOWN", "error": err.Error()}},
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status": "UP",
				"checks": []gin.H{{"name": "database", "status": "UP"}},
			})
		})

		group.GET("/info", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"app": gin.H{
					"name":    cfg.App.Name,
					"version": cfg.App.Version,
				},
				"lifecycle": gin.H{
					"phase":   phase().String(),
					"modules": modules,
				},
				"runtime": gin.H{
					"go":           runtime.Version(),
					"numGoroutine": runtime.NumGoroutine(),
					"time":         time.Now().UTC().Format(time.RFC3339),
					"pid":          os.Getpid(),
				},
			})
		})

		if cfg.Observability.Metrics.Enabled {
			group.GET("/metrics", gin.WrapH(promhttp.Handler()))
		}
	}
}
