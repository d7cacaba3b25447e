// Package graph defines the read boundary to the memory graph store.
//
// The retrieval engine only reads: resolving ids, fetching neighbor edges,
// and listing memories by kind. Writes exist solely for loading data into a
// store (see Writer) and are never performed during retrieval.
package graph

import (
	"context"

	"github.com/haasonsaas/recall/pkg/models"
)

// Store is the read-only graph boundary consumed by retrieval.
type Store interface {
	// Get resolves a memory by id. Returns nil, nil when the id does not
	// resolve; callers treat that as a silently dropped candidate.
	Get(ctx context.Context, namespace, id string) (*models.Memory, error)

	// Neighbors returns all edges touching the given memory, in both
	// directions. Returns an empty slice on not-found, never an error
	// for a missing node.
	Neighbors(ctx context.Context, namespace, id string) ([]models.MemoryLink, error)

	// ByKind lists memories of one kind, most recent first, up to limit.
	ByKind(ctx context.Context, namespace string, kind models.MemoryKind, limit int) ([]*models.Memory, error)

	// Recent lists the most recent memories of one kind, newest first.
	Recent(ctx context.Context, namespace string, kind models.MemoryKind, limit int) ([]*models.Memory, error)
}

// Writer is the ingestion-side boundary used by import tooling. Retrieval
// code never touches it.
type Writer interface {
	Put(ctx context.Context, namespace string, mem *models.Memory) error
	PutLink(ctx context.Context, namespace string, link models.MemoryLink) error
}
