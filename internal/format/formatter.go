package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/haasonsaas/recall/pkg/models"
)

// Content clip lengths. Episodes carry narrative and get more room;
// psyche and note entries are short by nature.
const (
	episodeClip = 500
	psycheClip  = 300
	noteClip    = 300
)

// Per-view caps on secondary sections.
const (
	tasksPsycheCap   = 3
	tasksEpisodeCap  = 5
	timelineIdentity = 2
)

// Formatter renders a memory set into the <memory_context> block handed
// to the model. It is stateless and safe for concurrent use.
type Formatter struct{}

// NewFormatter returns a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format assembles the context block: user card first, then view-specific
// sections, each fitted to its token budget. Empty sections are omitted.
// Memories of unknown kind are dropped.
func (f *Formatter) Format(memories []*models.Memory, view models.ContextView, budget models.ContextBudget, card *models.UserCard) string {
	var episodes, psyche, notes []*models.Memory
	for _, m := range memories {
		if m == nil {
			continue
		}
		switch m.Kind {
		case models.KindEpisode:
			episodes = append(episodes, m)
		case models.KindPsyche:
			psyche = append(psyche, m)
		case models.KindNote:
			notes = append(notes, m)
		}
	}

	var b strings.Builder
	b.WriteString("<memory_context>\n")

	if card != nil {
		if rendered := renderUserCard(card, budget.UserCardBudget); rendered != "" {
			b.WriteString(rendered)
		}
	}

	switch view {
	case models.ViewTimeline:
		byRecency(psyche)
		identity := fitToBudget(psyche, budget.PsycheBudget)
		if len(identity) > timelineIdentity {
			identity = identity[:timelineIdentity]
		}
		writeSection(&b, "identity", identity, renderPsyche)

		byRecency(episodes)
		selected := fitToBudget(episodes, budget.EpisodeBudget)
		chronological(selected)
		writeSection(&b, "timeline", selected, renderEpisode)

	case models.ViewTasks:
		active := make([]*models.Memory, 0, len(notes))
		for _, n := range notes {
			if !n.Completed() {
				active = append(active, n)
			}
		}
		byImportance(active)
		writeSection(&b, "active_tasks", fitToBudget(active, budget.NoteBudget), renderNote)

		byImportance(psyche)
		ctx := fitToBudget(psyche, budget.PsycheBudget)
		if len(ctx) > tasksPsycheCap {
			ctx = ctx[:tasksPsycheCap]
		}
		writeSection(&b, "context", ctx, renderPsyche)

		byRecency(episodes)
		recent := fitToBudget(episodes, budget.EpisodeBudget)
		if len(recent) > tasksEpisodeCap {
			recent = recent[:tasksEpisodeCap]
		}
		writeSection(&b, "recent_activity", recent, renderEpisode)

	case models.ViewGraphNeighborhood:
		// Traversal order is already score-ranked; keep it.
		writeSection(&b, "psyche", fitToBudget(psyche, budget.PsycheBudget), renderPsyche)
		writeSection(&b, "notes", fitToBudget(notes, budget.NoteBudget), renderNote)
		writeSection(&b, "episodes", fitToBudget(episodes, budget.EpisodeBudget), renderEpisode)

	default: // profile
		byImportance(psyche)
		writeSection(&b, "psyche", fitToBudget(psyche, budget.PsycheBudget), renderPsyche)

		byImportance(notes)
		writeSection(&b, "notes", fitToBudget(notes, budget.NoteBudget), renderNote)

		byRecency(episodes)
		writeSection(&b, "episodes", fitToBudget(episodes, budget.EpisodeBudget), renderEpisode)
	}

	b.WriteString("</memory_context>")
	return b.String()
}

func byImportance(items []*models.Memory) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EffectiveImportance() > items[j].EffectiveImportance()
	})
}

func byRecency(items []*models.Memory) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}

func chronological(items []*models.Memory) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
}

func writeSection(b *strings.Builder, tag string, items []*models.Memory, render func(*models.Memory) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "<%s>\n", tag)
	for _, m := range items {
		b.WriteString(render(m))
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "</%s>\n", tag)
}

func renderEpisode(m *models.Memory) string {
	var attrs strings.Builder
	if !m.Timestamp.IsZero() {
		fmt.Fprintf(&attrs, " date=%q", m.Timestamp.Format("2006-01-02"))
	}
	if m.Title != "" {
		fmt.Fprintf(&attrs, " title=%q", escapeText(m.Title))
	}
	return fmt.Sprintf("<episode%s>%s</episode>", attrs.String(), clippedContent(m, episodeClip))
}

func renderPsyche(m *models.Memory) string {
	tag := psycheTag(m.Subtype)
	return fmt.Sprintf("<%s>%s</%s>", tag, clippedContent(m, psycheClip), tag)
}

func renderNote(m *models.Memory) string {
	status := strings.ToLower(m.Status)
	if status == "" {
		status = "active"
	}
	var attrs strings.Builder
	fmt.Fprintf(&attrs, " status=%q", escapeText(status))
	if m.DueDate != nil {
		fmt.Fprintf(&attrs, " due=%q", m.DueDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("<task%s>%s</task>", attrs.String(), clippedContent(m, noteClip))
}

// psycheTag derives the element name from the memory subtype so traits,
// values, and preferences read distinctly. Anything unsafe as a tag name
// falls back to "trait".
func psycheTag(subtype string) string {
	tag := strings.ToLower(strings.TrimSpace(subtype))
	if tag == "" {
		return "trait"
	}
	for _, r := range tag {
		if (r < 'a' || r > 'z') && r != '_' {
			return "trait"
		}
	}
	return tag
}

// clippedContent picks content (title as fallback), escapes it, and clips
// to the given rune-safe byte length.
func clippedContent(m *models.Memory, clip int) string {
	text := m.Content
	if text == "" {
		text = m.Title
	}
	return escapeText(clipString(text, clip))
}

func clipString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	clipped := s[:max]
	// Back off a partial UTF-8 sequence at the cut point.
	for len(clipped) > 0 && clipped[len(clipped)-1]&0xC0 == 0x80 {
		clipped = clipped[:len(clipped)-1]
	}
	return clipped
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", " ",
	"\r", " ",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// renderUserCard flattens the card into labelled lines inside a
// <user_card> element, trimmed to its token budget.
func renderUserCard(card *models.UserCard, tokenBudget int) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+escapeText(value))
		}
	}
	add("Name", card.Name)
	add("Timezone", card.Timezone)
	add("Roles", strings.Join(card.Roles, ", "))
	add("Summary", card.Summary)
	add("Current focus", strings.Join(card.CurrentFocus, ", "))
	add("Core values", strings.Join(card.CoreValues, ", "))
	add("Key relationships", strings.Join(card.KeyRelationships, ", "))
	add("Communication style", card.CommunicationStyle)
	add("Uncertainties", strings.Join(card.Uncertainties, ", "))
	if len(lines) == 0 {
		return ""
	}

	body := strings.Join(lines, "\n")
	if maxChars := tokenBudget * charsPerToken; maxChars > 0 && len(body) > maxChars {
		body = clipString(body, maxChars)
	}
	return "<user_card>\n" + body + "\n</user_card>\n"
}
