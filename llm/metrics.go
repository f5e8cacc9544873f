package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactcoder_llm_calls_total",
			Help: "Language model calls by model and outcome",
		},
		[]string{"model", "status"},
	)

	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactcoder_llm_tokens_total",
			Help: "Tokens reported by the language model",
		},
		[]string{"model", "direction"},
	)

	llmLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reactcoder_llm_latency_seconds",
			Help:    "Language model call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)
)

// RecordCall records the outcome and latency of one model call.
func RecordCall(model string, err error, seconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	llmCallsTotal.WithLabelValues(model, status).Inc()
	llmLatency.WithLabelValues(model).Observe(seconds)
}

// RecordTokens adds reported token usage.
func RecordTokens(model string, input, output int) {
	if input > 0 {
		llmTokensTotal.WithLabelValues(model, "input").Add(float64(input))
	}
	if output > 0 {
		llmTokensTotal.WithLabelValues(model, "output").Add(float64(output))
	}
}
