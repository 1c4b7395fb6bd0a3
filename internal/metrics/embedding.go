// Package metrics holds the Prometheus collectors. Collectors are package
// variables; main registers each group once with the default registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Embedding provider metrics. Drafts, search queries, gap queries and
// indexed chunks all pass through the same embedder.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "simcheck",
		Subsystem: "embedding",
		Name:      "requests_total",
		Help:      "Embedding provider calls by outcome (ok, error, rate_limited).",
	}, []string{"provider", "model", "status"})

	EmbeddingRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "simcheck",
		Subsystem: "embedding",
		Name:      "request_duration_seconds",
		Help:      "Embedding provider latency.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30},
	}, []string{"provider", "model"})

	EmbeddingTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "simcheck",
		Subsystem: "embedding",
		Name:      "tokens_total",
		Help:      "Tokens billed by the embedding provider.",
	}, []string{"provider", "model"})

	EmbeddingCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "simcheck",
		Subsystem: "embedding",
		Name:      "cache_total",
		Help:      "Embedding cache lookups by result (hit, miss).",
	}, []string{"result"})
)

var registerEmbedding sync.Once

// RegisterEmbeddingMetrics registers the embedding collectors. Repeat calls are no-ops.
func RegisterEmbeddingMetrics() {
	registerEmbedding.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingCacheTotal,
		)
	})
}
