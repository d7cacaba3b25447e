package models

import (
	"time"
)

// DateRange is an inclusive day-granularity window used to constrain
// retrieval. Start and End are dates; callers compare against the start of
// Start's day and the end of End's day.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, inclusive on both
// ends at day granularity.
func (r DateRange) Contains(t time.Time) bool {
	dayStart := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, r.Start.Location())
	dayEnd := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 23, 59, 59, 999999999, r.End.Location())
	return !t.Before(dayStart) && !t.After(dayEnd)
}

// QueryExpansion is the structured hint bundle produced by analyzing a raw
// query: a temporal window, named entities, topic threads, and a cleaned
// semantic query for vector search.
//
// All fields are optional; SemanticQuery falls back to the original query
// text when analysis is unavailable.
type QueryExpansion struct {
	OriginalQuery       string     `json:"original_query"`
	DateRange           *DateRange `json:"date_range,omitempty"`
	Entities            []string   `json:"entities,omitempty"`
	RelationshipThreads []string   `json:"relationship_threads,omitempty"`
	SemanticQuery       string     `json:"semantic_query"`
}

// EffectiveQuery returns the cleaned semantic query, or the original query
// text when no cleaning happened.
func (e *QueryExpansion) EffectiveQuery() string {
	if e == nil {
		return ""
	}
	if e.SemanticQuery != "" {
		return e.SemanticQuery
	}
	return e.OriginalQuery
}

// SeedDebugEntry records one vector hit for observability: the resolved id
// and the similarity score the index reported.
type SeedDebugEntry struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// ExpansionStats describes one graph traversal.
type ExpansionStats struct {
	// NodesVisited counts every memory admitted to the visited set,
	// seeds included.
	NodesVisited int `json:"nodes_visited"`

	// RelationshipsTraversed counts every edge fetched during the
	// traversal, including edges rejected by the fan-out cap.
	RelationshipsTraversed int `json:"relationships_traversed"`

	// VisitedIDs is the final visited-id list in admission order.
	VisitedIDs []string `json:"visited_ids"`
}

// RetrievalStats is the structured observability record for one retrieval,
// consumed by evaluation and deep-logging tooling.
type RetrievalStats struct {
	View                   ContextView      `json:"view"`
	Seeds                  []SeedDebugEntry `json:"seeds"`
	NodesVisited           int              `json:"nodes_visited"`
	RelationshipsTraversed int              `json:"relationships_traversed"`
	RankedIDs              []string         `json:"ranked_ids"`

	ExpandDuration time.Duration `json:"expand_duration"`
	SeedDuration   time.Duration `json:"seed_duration"`
	GraphDuration  time.Duration `json:"graph_duration"`
	FormatDuration time.Duration `json:"format_duration"`
	TotalDuration  time.Duration `json:"total_duration"`
}
