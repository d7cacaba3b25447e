package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/haasonsaas/recall/internal/graph"
	"github.com/haasonsaas/recall/internal/observability"
	"github.com/haasonsaas/recall/pkg/models"
)

// GraphExpander walks the relationship graph outward from seed memories,
// admitting the highest-scoring neighbors at each node up to a per-node
// fan-out cap.
type GraphExpander struct {
	store  graph.Store
	logger *observability.Logger
	now    func() time.Time
}

// NewGraphExpander wires a graph store into an expander.
func NewGraphExpander(store graph.Store, logger *observability.Logger) *GraphExpander {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{})
	}
	return &GraphExpander{store: store, logger: logger, now: time.Now}
}

// Expand performs a breadth-first walk of at most hopDepth hops from the
// seeds. Each visited node contributes at most maxLinksPerNode neighbors,
// chosen by descending link score with ties broken by link order. The
// returned slice preserves traversal order: seeds first, then admitted
// neighbors hop by hop. Nodes whose neighbor fetch fails are logged and
// treated as having no neighbors.
func (e *GraphExpander) Expand(ctx context.Context, namespace string, seeds []*models.Memory, hopDepth, maxLinksPerNode int, exp *models.QueryExpansion) ([]*models.Memory, models.ExpansionStats) {
	visited := make(map[string]*models.Memory, len(seeds))
	ordered := make([]*models.Memory, 0, len(seeds))
	frontier := make([]*models.Memory, 0, len(seeds))
	for _, s := range seeds {
		if s == nil || s.ID == "" {
			continue
		}
		if _, ok := visited[s.ID]; ok {
			continue
		}
		visited[s.ID] = s
		ordered = append(ordered, s)
		frontier = append(frontier, s)
	}

	stats := models.ExpansionStats{}
	now := e.now()

	for hop := 0; hop < hopDepth && len(frontier) > 0; hop++ {
		next := make([]*models.Memory, 0, len(frontier))
		for _, node := range frontier {
			links, err := e.store.Neighbors(ctx, namespace, node.ID)
			if err != nil {
				e.logger.Warn(ctx, "neighbor fetch failed, skipping node",
					"memory_id", node.ID,
					"error", err,
				)
				continue
			}
			stats.RelationshipsTraversed += len(links)

			candidates := e.resolve(ctx, namespace, node.ID, links)
			sort.SliceStable(candidates, func(i, j int) bool {
				return ScoreLink(candidates[i], exp, now) > ScoreLink(candidates[j], exp, now)
			})

			admitted := 0
			for _, cand := range candidates {
				if admitted >= maxLinksPerNode {
					break
				}
				if _, ok := visited[cand.ID]; ok {
					continue
				}
				visited[cand.ID] = cand
				ordered = append(ordered, cand)
				next = append(next, cand)
				admitted++
			}
		}
		frontier = next
	}

	stats.NodesVisited = len(visited)
	stats.VisitedIDs = make([]string, 0, len(ordered))
	for _, m := range ordered {
		stats.VisitedIDs = append(stats.VisitedIDs, m.ID)
	}
	return ordered, stats
}

// resolve loads the memory on the far side of each link. Links whose
// target cannot be loaded are dropped.
func (e *GraphExpander) resolve(ctx context.Context, namespace, fromID string, links []models.MemoryLink) []*models.Memory {
	out := make([]*models.Memory, 0, len(links))
	for _, link := range links {
		otherID := link.Other(fromID)
		if otherID == "" {
			continue
		}
		m, err := e.store.Get(ctx, namespace, otherID)
		if err != nil {
			e.logger.Debug(ctx, "link target fetch failed",
				"memory_id", otherID,
				"error", err,
			)
			continue
		}
		if m == nil {
			continue
		}
		out = append(out, m)
	}
	return out
}
