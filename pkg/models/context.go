package models

// ContextView selects the rendering and ordering policy for an assembled
// context block. Exactly one view applies per request.
type ContextView string

const (
	// ViewProfile emphasizes identity: psyche first, then notes, then
	// recent episodes. The default view.
	ViewProfile ContextView = "profile"
	// ViewTimeline emphasizes chronology: episodes dominate, rendered
	// oldest to newest.
	ViewTimeline ContextView = "timeline"
	// ViewTasks emphasizes active commitments: open notes first.
	ViewTasks ContextView = "tasks"
	// ViewGraphNeighborhood preserves traversal order for entity-centric
	// queries.
	ViewGraphNeighborhood ContextView = "graph_neighborhood"
)

// ContextBudget partitions a total token budget across context sections.
// Each sub-budget is a soft cap: accumulation for a section stops once the
// next item would exceed it.
type ContextBudget struct {
	TotalTokens    int `json:"total_tokens" yaml:"total_tokens"`
	UserCardBudget int `json:"user_card_budget" yaml:"user_card_budget"`
	PsycheBudget   int `json:"psyche_budget" yaml:"psyche_budget"`
	EpisodeBudget  int `json:"episode_budget" yaml:"episode_budget"`
	NoteBudget     int `json:"note_budget" yaml:"note_budget"`
}

// DefaultContextBudget returns the standard budget split.
func DefaultContextBudget() ContextBudget {
	return ContextBudget{
		TotalTokens:    4000,
		UserCardBudget: 300,
		PsycheBudget:   600,
		EpisodeBudget:  2400,
		NoteBudget:     700,
	}
}

// UserCard is the compact identity anchor rendered at the top of every
// context block, regardless of view.
type UserCard struct {
	Name               string   `json:"name,omitempty"`
	Timezone           string   `json:"timezone,omitempty"`
	Roles              []string `json:"roles,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	CurrentFocus       []string `json:"current_focus,omitempty"`
	CoreValues         []string `json:"core_values,omitempty"`
	KeyRelationships   []string `json:"key_relationships,omitempty"`
	CommunicationStyle string   `json:"communication_style,omitempty"`
	Uncertainties      []string `json:"uncertainties,omitempty"`
}
