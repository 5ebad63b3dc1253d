// ABOUTME: Prometheus counters for remote writes and completion toggles.
// ABOUTME: Registered on the default registry so the MCP server can expose them.
package sync

import "github.com/prometheus/client_golang/prometheus"

var (
	writesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habito",
		Subsystem: "sync",
		Name:      "writes_total",
		Help:      "Remote activity writes, labeled by operation and outcome.",
	}, []string{"op", "outcome"})

	togglesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habito",
		Name:      "toggles_total",
		Help:      "Completion toggles, labeled by direction (complete or undo).",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(writesCounter, togglesCounter)
}

// CountToggle records one completion toggle.
func CountToggle(completing bool) {
	direction := "undo"
	if completing {
		direction = "complete"
	}
	togglesCounter.WithLabelValues(direction).Inc()
}
