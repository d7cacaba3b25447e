package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for collecting retrieval metrics.
//
// The metrics system is built on Prometheus and tracks:
//   - Retrieval requests by selected view and outcome
//   - Seed counts and graph traversal sizes
//   - Per-phase latency (expand, seed, graph, format)
//   - Collaborator failures (vector index, graph store, expansion LLM)
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	metrics.RecordRetrieval("timeline", "success", 0.042)
type Metrics struct {
	// RetrievalCounter counts retrieval requests.
	// Labels: view (profile|timeline|tasks|graph_neighborhood), status (success|degraded)
	RetrievalCounter *prometheus.CounterVec

	// RetrievalDuration measures end-to-end retrieval latency in seconds.
	// Labels: view
	// Buckets: 0.005s, 0.01s, 0.05s, 0.1s, 0.5s, 1s, 2s, 5s
	RetrievalDuration *prometheus.HistogramVec

	// PhaseDuration measures per-phase latency in seconds.
	// Labels: phase (expand|seed|graph|format)
	PhaseDuration *prometheus.HistogramVec

	// SeedCount observes the number of vector seeds per retrieval.
	SeedCount prometheus.Histogram

	// NodesVisited observes the traversal size per retrieval.
	NodesVisited prometheus.Histogram

	// CollaboratorErrors counts absorbed collaborator failures.
	// Labels: collaborator (vector|graph|expansion)
	CollaboratorErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
// This should be called once at application startup.
func NewMetrics() *Metrics {
	return &Metrics{
		RetrievalCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_retrievals_total",
				Help: "Total number of retrieval requests by view and status",
			},
			[]string{"view", "status"},
		),

		RetrievalDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recall_retrieval_duration_seconds",
				Help:    "End-to-end retrieval latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"view"},
		),

		PhaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recall_phase_duration_seconds",
				Help:    "Per-phase retrieval latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"phase"},
		),

		SeedCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recall_seed_count",
				Help:    "Number of vector seeds per retrieval",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),

		NodesVisited: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recall_nodes_visited",
				Help:    "Number of graph nodes visited per retrieval",
				Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
			},
		),

		CollaboratorErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_collaborator_errors_total",
				Help: "Absorbed collaborator failures by collaborator",
			},
			[]string{"collaborator"},
		),
	}
}

// RecordRetrieval records one completed retrieval.
//
// Example:
//
//	metrics.RecordRetrieval("profile", "success", time.Since(start).Seconds())
func (m *Metrics) RecordRetrieval(view, status string, durationSeconds float64) {
	m.RetrievalCounter.WithLabelValues(view, status).Inc()
	m.RetrievalDuration.WithLabelValues(view).Observe(durationSeconds)
}

// RecordPhase records the latency of one pipeline phase.
func (m *Metrics) RecordPhase(phase string, durationSeconds float64) {
	m.PhaseDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// RecordTraversal records the size of one retrieval's seed set and traversal.
func (m *Metrics) RecordTraversal(seeds, nodesVisited int) {
	m.SeedCount.Observe(float64(seeds))
	m.NodesVisited.Observe(float64(nodesVisited))
}

// RecordCollaboratorError counts an absorbed collaborator failure.
//
// Example:
//
//	metrics.RecordCollaboratorError("vector")
func (m *Metrics) RecordCollaboratorError(collaborator string) {
	m.CollaboratorErrors.WithLabelValues(collaborator).Inc()
}
