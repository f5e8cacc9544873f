package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactcoder_tool_calls_total",
			Help: "Tool invocations made by workflows",
		},
		[]string{"tool"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reactcoder_tool_duration_seconds",
			Help:    "Wall-clock duration of tool invocations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"tool"},
	)
)

// RecordToolCall records one tool invocation.
func RecordToolCall(tool string, d time.Duration) {
	toolCallsTotal.WithLabelValues(tool).Inc()
	toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}
