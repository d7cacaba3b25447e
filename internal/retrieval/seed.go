package retrieval

import (
	"context"

	"github.com/haasonsaas/recall/internal/graph"
	"github.com/haasonsaas/recall/internal/observability"
	"github.com/haasonsaas/recall/internal/vector"
	"github.com/haasonsaas/recall/pkg/models"
)

// Static context caps: how many always-included items accompany the
// vector seeds regardless of the query.
const (
	staticNoteLimit   = 10
	staticPsycheLimit = 5
)

// SeedRetriever produces the initial memory set for a query: semantic
// seeds from the vector index plus a small static slice of active notes
// and recent psyche entries.
type SeedRetriever struct {
	index  vector.Index
	store  graph.Store
	logger *observability.Logger
}

// SeedResult carries the seed memories, the always-included static
// memories, and per-seed debug scores. Degraded is set when the vector
// index failed and only static context is available.
type SeedResult struct {
	Seeds    []*models.Memory
	Static   []*models.Memory
	Debug    []models.SeedDebugEntry
	Degraded bool
}

// NewSeedRetriever wires the vector index and graph store together.
func NewSeedRetriever(index vector.Index, store graph.Store, logger *observability.Logger) *SeedRetriever {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{})
	}
	return &SeedRetriever{index: index, store: store, logger: logger}
}

// Seed runs the vector search and resolves the hits to full memories.
// A vector index failure is absorbed: the result is marked degraded and
// the static context still flows through. Hits that no longer resolve in
// the graph store are dropped.
func (r *SeedRetriever) Seed(ctx context.Context, namespace, query string, topK int, dateRange *models.DateRange, includeStatic bool) SeedResult {
	result := SeedResult{}
	if includeStatic {
		result.Static = r.staticContext(ctx, namespace)
	}

	if r.index == nil {
		result.Degraded = true
		return result
	}

	hits, err := r.index.Search(ctx, namespace, query, vector.SearchOptions{
		Limit:     topK,
		DateRange: dateRange,
	})
	if err != nil {
		r.logger.Warn(ctx, "vector search failed, degrading to static context",
			"namespace", namespace,
			"error", err,
		)
		result.Degraded = true
		return result
	}

	for _, hit := range hits {
		m, err := r.store.Get(ctx, namespace, hit.ID)
		if err != nil {
			r.logger.Debug(ctx, "seed resolution failed",
				"memory_id", hit.ID,
				"error", err,
			)
			continue
		}
		if m == nil {
			continue
		}
		result.Seeds = append(result.Seeds, m)
		result.Debug = append(result.Debug, models.SeedDebugEntry{ID: hit.ID, Score: hit.Score})
	}
	return result
}

// staticContext loads up to staticNoteLimit non-completed notes and the
// staticPsycheLimit most recent psyche entries. Failures here are logged
// and produce an empty slice rather than an error.
func (r *SeedRetriever) staticContext(ctx context.Context, namespace string) []*models.Memory {
	var static []*models.Memory

	notes, err := r.store.ByKind(ctx, namespace, models.KindNote, 0)
	if err != nil {
		r.logger.Warn(ctx, "static note fetch failed", "error", err)
	} else {
		count := 0
		for _, n := range notes {
			if n.Completed() {
				continue
			}
			static = append(static, n)
			count++
			if count >= staticNoteLimit {
				break
			}
		}
	}

	psyche, err := r.store.ByKind(ctx, namespace, models.KindPsyche, staticPsycheLimit)
	if err != nil {
		r.logger.Warn(ctx, "static psyche fetch failed", "error", err)
	} else {
		static = append(static, psyche...)
	}

	return static
}
