package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Similarity, gap and indexer metrics.
var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simcheck",
			Name:      "recommendations_total",
			Help:      "Similarity checks by recommended action",
		},
		[]string{"action"},
	)

	NarrativeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simcheck",
			Name:      "narrative_calls_total",
			Help:      "Narrative model calls by outcome",
		},
		[]string{"status"},
	)

	NarrativeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "simcheck",
			Name:      "narrative_duration_seconds",
			Help:      "Narrative model call duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
	)

	GapBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simcheck",
			Name:      "gap_batches_total",
			Help:      "Gap analysis batches by variant and outcome",
		},
		[]string{"variant", "status"},
	)

	GapsFoundTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simcheck",
			Name:      "gaps_found_total",
			Help:      "Content gaps identified by variant and level",
		},
		[]string{"variant", "level"},
	)

	GapRunsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "simcheck",
			Name:      "gap_runs_active",
			Help:      "Background gap runs currently executing",
		},
	)

	IndexedChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simcheck",
			Name:      "indexed_chunks_total",
			Help:      "Chunks written to the vector index by outcome",
		},
		[]string{"collection", "status"},
	)
)

var registerAnalysis sync.Once

// RegisterAnalysisMetrics registers similarity, gap and indexer metrics. Repeat calls are no-ops.
func RegisterAnalysisMetrics() {
	registerAnalysis.Do(func() {
		prometheus.MustRegister(
			RecommendationsTotal,
			NarrativeCallsTotal,
			NarrativeDuration,
			GapBatchesTotal,
			GapsFoundTotal,
			GapRunsActive,
			IndexedChunksTotal,
		)
	})
}
