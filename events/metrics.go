package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_events_published_total",
		Help: "Events published on the broadcast bus.",
	})
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_events_dropped_total",
		Help: "Events discarded because a subscriber mailbox was full.",
	})
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mosaic_queue_depth",
		Help: "Tasks currently waiting in the background work queue.",
	})
)
