package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "calendar_service",
		Subsystem: "realtime",
		Name:      "subscribers",
		Help:      "Number of currently connected websocket subscribers.",
	})

	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar_service",
		Subsystem: "realtime",
		Name:      "events_published_total",
		Help:      "Number of activity-change events accepted for fan-out, labeled by event name.",
	}, []string{"event"})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calendar_service",
		Subsystem: "realtime",
		Name:      "events_dropped_total",
		Help:      "Number of activity-change events dropped because the fan-out queue was full.",
	})

	evictionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calendar_service",
		Subsystem: "realtime",
		Name:      "subscriber_evictions_total",
		Help:      "Number of subscribers evicted after a failed send.",
	})
)

func init() {
	prometheus.MustRegister(subscribersGauge, publishedCounter, droppedCounter, evictionsCounter)
}
