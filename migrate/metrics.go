package migrate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var appliedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "mosaic_migrations_applied_total",
	Help: "Number of migrations applied since process start.",
})
