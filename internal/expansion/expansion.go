// Package expansion turns raw query text into structured retrieval hints:
// a temporal window, named entities, topic threads, and a cleaned semantic
// query. An LLM-backed client does the real analysis; a rule-based
// fallback keeps retrieval working when no LLM is available.
package expansion

import (
	"context"

	"github.com/haasonsaas/recall/pkg/models"
)

// Client analyzes a query into retrieval hints. Implementations must not
// mutate shared state; a returned expansion is owned by the caller.
type Client interface {
	Expand(ctx context.Context, query, timezone string) (*models.QueryExpansion, error)
}
