package retrieval

import (
	"strings"
	"time"

	"github.com/haasonsaas/recall/pkg/models"
)

// Recency bonus thresholds for link scoring.
const (
	recentWindow     = 7 * 24 * time.Hour
	recentBonus      = 0.3
	moderateWindow   = 30 * 24 * time.Hour
	moderateBonus    = 0.1
	entityMatchBonus = 0.2
)

// ScoreLink ranks a candidate memory reached during graph expansion.
// The score is the memory's importance, plus a bonus per query entity
// that appears in the title or content, plus a recency bonus. Memories
// without a timestamp get no recency component.
func ScoreLink(m *models.Memory, exp *models.QueryExpansion, now time.Time) float64 {
	score := m.EffectiveImportance()

	if exp != nil && len(exp.Entities) > 0 {
		text := strings.ToLower(m.Title + " " + m.Content)
		for _, entity := range exp.Entities {
			e := strings.ToLower(entity)
			if e != "" && strings.Contains(text, e) {
				score += entityMatchBonus
			}
		}
	}

	if !m.Timestamp.IsZero() {
		age := now.Sub(m.Timestamp)
		switch {
		case age < recentWindow:
			score += recentBonus
		case age < moderateWindow:
			score += moderateBonus
		}
	}

	return score
}
