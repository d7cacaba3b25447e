// Package retrieval implements the context retrieval pipeline: view
// routing, vector seeding, hop-limited graph expansion, and scoring.
package retrieval

import (
	"strings"

	"github.com/haasonsaas/recall/pkg/models"
)

// Signal phrase sets for view routing. Matching is case-insensitive
// substring matching; priority is temporal > task > profile > entity.
var (
	timelineSignals = []string{
		"what happened",
		"when did",
		"last week",
		"yesterday",
		"recently",
		"history",
		"timeline",
	}

	taskSignals = []string{
		"what should i do",
		"my tasks",
		"todo",
		"goals",
		"priorities",
		"what's next",
		"action items",
	}

	profileSignals = []string{
		"who am i",
		"what do i like",
		"my preferences",
		"about me",
		"my values",
		"my personality",
	}
)

// RouteView classifies a query (plus expansion hints) into the view that
// determines which memory categories are emphasized and in what order.
// Pure function; first match wins.
func RouteView(query string, exp *models.QueryExpansion) models.ContextView {
	if exp != nil && exp.DateRange != nil {
		return models.ViewTimeline
	}

	q := strings.ToLower(query)
	if containsAny(q, timelineSignals) {
		return models.ViewTimeline
	}
	if containsAny(q, taskSignals) {
		return models.ViewTasks
	}
	if containsAny(q, profileSignals) {
		return models.ViewProfile
	}
	if exp != nil && len(exp.Entities) > 0 {
		return models.ViewGraphNeighborhood
	}
	return models.ViewProfile
}

func containsAny(q string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(q, s) {
			return true
		}
	}
	return false
}
