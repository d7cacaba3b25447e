// Package vector defines the similarity-search boundary consumed by seed
// retrieval, plus implementations backed by SQLite and pgvector.
package vector

import (
	"context"

	"github.com/haasonsaas/recall/pkg/models"
)

// Index is the similarity-search boundary. Implementations embed the query
// text themselves and return id/score pairs; resolving ids into full
// memory records is the caller's job.
type Index interface {
	// Search returns the ids most similar to the query text within a
	// namespace, best first. When opts.DateRange is set, only memories
	// whose timestamp falls inside the inclusive window are considered.
	Search(ctx context.Context, namespace, query string, opts SearchOptions) ([]Result, error)
}

// Indexer is the write side used by import tooling.
type Indexer interface {
	// Index stores (or replaces) entries for later search. Entries
	// without an embedding are embedded first.
	Index(ctx context.Context, namespace string, entries []*models.Memory) error
}

// SearchOptions constrains a similarity search.
type SearchOptions struct {
	Limit     int
	DateRange *models.DateRange
}

// Result is one similarity hit.
type Result struct {
	ID    string
	Score float32
}
