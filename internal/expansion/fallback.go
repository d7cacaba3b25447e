package expansion

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/haasonsaas/recall/pkg/models"
)

// dateMarkerRe matches the "(date: YYYY-MM-DD)" convention calling code
// uses to inject the logical current date into a query.
var dateMarkerRe = regexp.MustCompile(`\(date:\s*(\d{4}-\d{2}-\d{2})\)`)

// Fallback is a rule-based Client used when no LLM expansion collaborator
// is configured or the configured one fails. It handles common temporal
// phrases and never returns an error.
type Fallback struct {
	// Now supplies the anchor date when the query carries no date
	// marker. Defaults to time.Now.
	Now func() time.Time
}

var _ Client = (*Fallback)(nil)

// Expand extracts a date range from temporal phrases in the query. The
// anchor date comes from a "(date: YYYY-MM-DD)" marker when present,
// otherwise from the wall clock. A marker that does not parse as a real
// date yields no filter at all rather than a clock-anchored one.
func (f *Fallback) Expand(_ context.Context, query, _ string) (*models.QueryExpansion, error) {
	exp := &models.QueryExpansion{
		OriginalQuery: query,
		SemanticQuery: query,
	}
	anchor, ok := f.anchorDate(query)
	if ok {
		exp.DateRange = rangeFromPhrases(query, anchor)
	}
	return exp, nil
}

func (f *Fallback) anchorDate(query string) (time.Time, bool) {
	if m := dateMarkerRe.FindStringSubmatch(query); m != nil {
		t, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// rangeFromPhrases maps temporal phrases to a day-granularity window
// anchored at the given date. Returns nil when no phrase matches.
func rangeFromPhrases(query string, anchor time.Time) *models.DateRange {
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "yesterday"):
		day := anchor.AddDate(0, 0, -1)
		return &models.DateRange{Start: day, End: day}
	case strings.Contains(q, "last week"), strings.Contains(q, "past week"), strings.Contains(q, "week ago"):
		return &models.DateRange{Start: anchor.AddDate(0, 0, -7), End: anchor}
	case strings.Contains(q, "last month"), strings.Contains(q, "past month"):
		return &models.DateRange{Start: anchor.AddDate(0, 0, -30), End: anchor}
	case strings.Contains(q, "today"):
		return &models.DateRange{Start: anchor, End: anchor}
	}
	return nil
}
