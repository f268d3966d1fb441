package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	chatRequestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar_service",
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Number of chat turns, labeled by outcome.",
	}, []string{"outcome"})

	toolCallsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar_service",
		Subsystem: "chat",
		Name:      "tool_calls_total",
		Help:      "Number of model-requested tool calls, labeled by tool and outcome.",
	}, []string{"tool", "outcome"})
)

func init() {
	prometheus.MustRegister(chatRequestsCounter, toolCallsCounter)
}
