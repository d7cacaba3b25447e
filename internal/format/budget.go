// Package format assembles retrieved memories into a token-budgeted,
// view-ordered XML-ish context block.
package format

import "github.com/haasonsaas/recall/pkg/models"

// Token estimation constants. Budgets are expressed in tokens but
// enforced in characters using a fixed chars-per-token ratio; each item
// carries a flat overhead for its markup.
const (
	charsPerToken = 4
	itemOverhead  = 50
)

// estimateTokens approximates the token cost of one memory's rendered
// form: content length (title when content is empty) plus markup overhead.
func estimateTokens(m *models.Memory) int {
	text := m.Content
	if text == "" {
		text = m.Title
	}
	return (len(text) + itemOverhead) / charsPerToken
}

// fitToBudget accumulates items greedily in order, stopping at the first
// item that would push the running total past the token budget.
func fitToBudget(items []*models.Memory, tokenBudget int) []*models.Memory {
	fitted := make([]*models.Memory, 0, len(items))
	used := 0
	for _, m := range items {
		cost := estimateTokens(m)
		if used+cost > tokenBudget {
			break
		}
		fitted = append(fitted, m)
		used += cost
	}
	return fitted
}
