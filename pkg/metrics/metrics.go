package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLM call latency in milliseconds
	LLMCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_latency_ms",
			Help:    "Text generation API call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"operation", "status"},
	)

	LLMFallbackCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_fallback_count",
			Help: "Number of generation calls answered with static fallback text",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Number of database queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	SupportiveMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportive_message_count",
			Help: "Supportive notifications handled by the sweep",
		},
		[]string{"status"}, // created, skipped, failed
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_sweep_duration_seconds",
			Help:    "Duration of a full notification sweep",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)
)

func RecordLLMCallLatency(operation, status string, duration time.Duration) {
	LLMCallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}

func IncrementLLMFallback(operation string) {
	LLMFallbackCount.WithLabelValues(operation).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSlowQuery counts a slow query; the label is the truncated statement.
func IncrementSlowQuery(sql string) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

func IncrementSupportiveMessage(status string) {
	SupportiveMessageCount.WithLabelValues(status).Inc()
}

func RecordSweepDuration(duration time.Duration) {
	SweepDuration.Observe(duration.Seconds())
}
