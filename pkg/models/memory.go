// Package models defines the core data types for Recall.
package models

import (
	"time"
)

// MemoryKind identifies the category of a memory.
type MemoryKind string

const (
	// KindEpisode is a narrative memory unit: what happened, when.
	KindEpisode MemoryKind = "episode"
	// KindPsyche is a trait, preference, value, or belief fragment.
	KindPsyche MemoryKind = "psyche"
	// KindNote is an actionable task, todo, goal, or project item.
	KindNote MemoryKind = "note"
	// KindUnknown covers records whose stored kind is not recognized.
	KindUnknown MemoryKind = "unknown"
)

// ParseMemoryKind maps a stored kind string to a MemoryKind, tolerating
// the legacy "goal" spelling for notes.
func ParseMemoryKind(s string) MemoryKind {
	switch s {
	case "episode":
		return KindEpisode
	case "psyche":
		return KindPsyche
	case "note", "goal":
		return KindNote
	default:
		return KindUnknown
	}
}

// StatusCompleted marks a note as done; completed notes are excluded from
// static context and from the tasks view.
const StatusCompleted = "COMPLETED"

// Memory is a single memory unit in a user's graph.
//
// All kinds share the same record shape; Kind determines which optional
// fields are meaningful (Status and DueDate apply to notes, SessionID to
// episodes, Subtype to psyche/notes).
type Memory struct {
	ID   string     `json:"id"`
	Kind MemoryKind `json:"kind"`

	Title   string `json:"title,omitempty"`
	Content string `json:"content"`

	// Timestamp is when the memory refers to, not when it was stored.
	// A zero value means the record has no temporal anchor.
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`

	// Importance is a relevance prior in [0,1] assigned at ingestion.
	Importance float64 `json:"importance,omitempty"`

	// HasImportance distinguishes an explicit 0 from an unset value.
	HasImportance bool `json:"-"`

	// Subtype refines the kind: "trait"/"preference"/"value" for psyche,
	// "task"/"project"/"reminder" for notes.
	Subtype string `json:"subtype,omitempty"`

	// Status applies to notes: "active", "IN_PROGRESS", "COMPLETED", etc.
	Status string `json:"status,omitempty"`

	DueDate   *time.Time `json:"due_date,omitempty"`
	SessionID string     `json:"session_id,omitempty"`

	SourceType string `json:"source_type,omitempty"`
	SourceRef  string `json:"source_ref,omitempty"`

	// Embedding is populated only when the record carries its own vector.
	Embedding []float32 `json:"-"`
}

// EffectiveImportance returns the importance prior, defaulting to 0.5 when
// the record carries none.
func (m *Memory) EffectiveImportance() float64 {
	if m.HasImportance {
		return m.Importance
	}
	return 0.5
}

// Completed reports whether a note-kind memory has been closed out.
func (m *Memory) Completed() bool {
	return m.Status == StatusCompleted
}

// MemoryLink is a directed edge between two memories.
//
// Relation is an open label, not an enum: temporal chains use PREVIOUS/NEXT,
// everything else is whatever the ingestion pipeline emitted.
type MemoryLink struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Relation string `json:"relation"`
}

// Known relation labels. Other labels are valid; these are the ones the
// system itself assigns.
const (
	RelationPrevious = "PREVIOUS"
	RelationNext     = "NEXT"
	RelationRelated  = "RELATED"
)

// RelationClass buckets an open relation label for display and filtering.
type RelationClass string

const (
	RelationClassTemporal RelationClass = "temporal"
	RelationClassUnknown  RelationClass = "unknown"
)

// ClassifyRelation maps a relation label to a coarse class, with an
// explicit unknown fallback for open labels.
func ClassifyRelation(relation string) RelationClass {
	switch relation {
	case RelationPrevious, RelationNext:
		return RelationClassTemporal
	default:
		return RelationClassUnknown
	}
}

// Other returns the id at the far end of the link from the given memory.
func (l MemoryLink) Other(id string) string {
	if l.SourceID == id {
		return l.TargetID
	}
	return l.SourceID
}
