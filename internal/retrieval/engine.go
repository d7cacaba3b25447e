package retrieval

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/haasonsaas/recall/internal/expansion"
	"github.com/haasonsaas/recall/internal/format"
	"github.com/haasonsaas/recall/internal/graph"
	"github.com/haasonsaas/recall/internal/observability"
	"github.com/haasonsaas/recall/internal/vector"
	"github.com/haasonsaas/recall/pkg/models"
)

// Pipeline defaults, overridable per request and via config.
const (
	DefaultTopK            = 5
	DefaultHopDepth        = 1
	DefaultMaxLinksPerNode = 15
)

// Options configures an Engine.
type Options struct {
	TopK            int
	HopDepth        int
	MaxLinksPerNode int
	IncludeStatic   bool
	Budget          models.ContextBudget

	Logger  *observability.Logger
	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// Engine runs the full retrieval pipeline: query expansion, view routing,
// vector seeding, graph expansion, and context formatting. Collaborator
// failures degrade the result instead of failing the request.
type Engine struct {
	expander  expansion.Client
	seeder    *SeedRetriever
	graph     *GraphExpander
	formatter *format.Formatter

	opts Options
}

// Request describes one retrieval. Zero-valued tuning fields fall back to
// the engine's configured defaults.
type Request struct {
	Namespace string
	Query     string
	Timezone  string

	TopK            int
	HopDepth        int
	MaxLinksPerNode int

	// View forces a view instead of routing from the query.
	View models.ContextView

	UserCard *models.UserCard
	Budget   *models.ContextBudget
}

// Result is the assembled context plus the stats record for this request.
type Result struct {
	Context string
	Stats   models.RetrievalStats
}

// NewEngine builds an Engine. The expansion client may be nil; the
// rule-based fallback is used in that case.
func NewEngine(expander expansion.Client, index vector.Index, store graph.Store, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.HopDepth <= 0 {
		opts.HopDepth = DefaultHopDepth
	}
	if opts.MaxLinksPerNode <= 0 {
		opts.MaxLinksPerNode = DefaultMaxLinksPerNode
	}
	if opts.Budget.TotalTokens == 0 {
		opts.Budget = models.DefaultContextBudget()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.LogConfig{})
	}
	if opts.Tracer == nil {
		opts.Tracer, _ = observability.NewTracer(observability.TraceConfig{})
	}
	if expander == nil {
		expander = &expansion.Fallback{}
	}
	return &Engine{
		expander:  expander,
		seeder:    NewSeedRetriever(index, store, opts.Logger),
		graph:     NewGraphExpander(store, opts.Logger),
		formatter: format.NewFormatter(),
		opts:      opts,
	}
}

// Retrieve runs the pipeline for one query. It never returns an error for
// collaborator failures; the stats record and logs carry the degradation.
func (e *Engine) Retrieve(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx = observability.WithNamespace(ctx, req.Namespace)

	topK := req.TopK
	if topK <= 0 {
		topK = e.opts.TopK
	}
	hopDepth := req.HopDepth
	if hopDepth <= 0 {
		hopDepth = e.opts.HopDepth
	}
	maxLinks := req.MaxLinksPerNode
	if maxLinks <= 0 {
		maxLinks = e.opts.MaxLinksPerNode
	}
	budget := e.opts.Budget
	if req.Budget != nil {
		budget = *req.Budget
	}

	ctx, span := e.opts.Tracer.Start(ctx, "retrieval.retrieve",
		attribute.String("namespace", req.Namespace),
	)
	defer span.End()

	// Phase 1: query expansion.
	expandStart := time.Now()
	exp, err := e.expander.Expand(ctx, req.Query, req.Timezone)
	if err != nil {
		e.opts.Logger.Warn(ctx, "query expansion failed, using fallback",
			"error", err,
		)
		e.recordCollaboratorError("expansion")
		fb := &expansion.Fallback{}
		exp, _ = fb.Expand(ctx, req.Query, req.Timezone)
	}
	if exp == nil {
		exp = &models.QueryExpansion{OriginalQuery: req.Query, SemanticQuery: req.Query}
	}
	expandDur := time.Since(expandStart)

	// Phase 2: view routing.
	view := req.View
	if view == "" {
		view = RouteView(req.Query, exp)
	}

	// Phase 3: vector seeding plus static context.
	seedStart := time.Now()
	seeded := e.seeder.Seed(ctx, req.Namespace, exp.EffectiveQuery(), topK, exp.DateRange, e.opts.IncludeStatic)
	if seeded.Degraded {
		e.recordCollaboratorError("vector")
	}
	seedDur := time.Since(seedStart)

	// Phase 4: graph expansion from the vector seeds.
	graphStart := time.Now()
	expanded, expStats := e.graph.Expand(ctx, req.Namespace, seeded.Seeds, hopDepth, maxLinks, exp)
	graphDur := time.Since(graphStart)

	// Merge: traversal order first, then static extras not already present.
	merged := make([]*models.Memory, 0, len(expanded)+len(seeded.Static))
	seen := make(map[string]struct{}, len(expanded))
	for _, m := range expanded {
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range seeded.Static {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}

	// Phase 5: format.
	formatStart := time.Now()
	rendered := e.formatter.Format(merged, view, budget, req.UserCard)
	formatDur := time.Since(formatStart)

	rankedIDs := make([]string, 0, len(merged))
	for _, m := range merged {
		rankedIDs = append(rankedIDs, m.ID)
	}

	total := time.Since(start)
	stats := models.RetrievalStats{
		View:                   view,
		Seeds:                  seeded.Debug,
		NodesVisited:           expStats.NodesVisited,
		RelationshipsTraversed: expStats.RelationshipsTraversed,
		RankedIDs:              rankedIDs,
		ExpandDuration:         expandDur,
		SeedDuration:           seedDur,
		GraphDuration:          graphDur,
		FormatDuration:         formatDur,
		TotalDuration:          total,
	}

	status := "success"
	if seeded.Degraded {
		status = "degraded"
	}
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordRetrieval(string(view), status, total.Seconds())
		e.opts.Metrics.RecordPhase("expand", expandDur.Seconds())
		e.opts.Metrics.RecordPhase("seed", seedDur.Seconds())
		e.opts.Metrics.RecordPhase("graph", graphDur.Seconds())
		e.opts.Metrics.RecordPhase("format", formatDur.Seconds())
		e.opts.Metrics.RecordTraversal(len(seeded.Seeds), expStats.NodesVisited)
	}

	span.SetAttributes(
		attribute.String("view", string(view)),
		attribute.Int("seeds", len(seeded.Seeds)),
		attribute.Int("nodes_visited", expStats.NodesVisited),
		attribute.Int("relationships_traversed", expStats.RelationshipsTraversed),
		attribute.Bool("degraded", seeded.Degraded),
	)

	e.opts.Logger.Info(ctx, "retrieval complete",
		"view", view,
		"status", status,
		"seeds", len(seeded.Seeds),
		"nodes_visited", expStats.NodesVisited,
		"relationships_traversed", expStats.RelationshipsTraversed,
		"duration_ms", total.Milliseconds(),
	)

	return &Result{Context: rendered, Stats: stats}, nil
}

func (e *Engine) recordCollaboratorError(collaborator string) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordCollaboratorError(collaborator)
	}
}
