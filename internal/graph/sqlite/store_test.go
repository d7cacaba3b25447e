package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/haasonsaas/recall/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mem := &models.Memory{
		ID:            "n1",
		Kind:          models.KindNote,
		Title:         "Run 10k",
		Content:       "Training for marathon",
		Timestamp:     time.Date(2025, 12, 20, 9, 0, 0, 0, time.UTC),
		Importance:    0.9,
		HasImportance: true,
		Subtype:       "task",
		Status:        "IN_PROGRESS",
		DueDate:       &due,
	}
	if err := s.Put(ctx, "user1", mem); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := s.Get(ctx, "user1", "n1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for stored memory")
	}
	if got.Kind != models.KindNote {
		t.Errorf("Kind = %q, want note", got.Kind)
	}
	if got.Title != "Run 10k" || got.Content != "Training for marathon" {
		t.Errorf("content mismatch: %+v", got)
	}
	if !got.HasImportance || got.Importance != 0.9 {
		t.Errorf("importance = (%v, %v), want (0.9, true)", got.Importance, got.HasImportance)
	}
	if got.Status != "IN_PROGRESS" || got.Subtype != "task" {
		t.Errorf("status/subtype mismatch: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "user1", "missing")
	if err != nil {
		t.Fatalf("Get() error for missing id: %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for missing id", got)
	}
}

func TestStore_NamespaceIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mem := &models.Memory{ID: "e1", Kind: models.KindEpisode, Content: "private"}
	if err := s.Put(ctx, "alice", mem); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := s.Get(ctx, "bob", "e1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != nil {
		t.Error("memory leaked across namespaces")
	}
}

func TestStore_Neighbors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"e1", "n1", "p1"} {
		if err := s.Put(ctx, "user1", &models.Memory{ID: id, Kind: models.KindEpisode, Content: id}); err != nil {
			t.Fatalf("Put(%s) error: %v", id, err)
		}
	}
	links := []models.MemoryLink{
		{SourceID: "e1", TargetID: "n1", Relation: models.RelationRelated},
		{SourceID: "p1", TargetID: "e1", Relation: "evidence_for"},
		{SourceID: "n1", TargetID: "p1", Relation: models.RelationRelated},
	}
	for _, l := range links {
		if err := s.PutLink(ctx, "user1", l); err != nil {
			t.Fatalf("PutLink() error: %v", err)
		}
	}

	got, err := s.Neighbors(ctx, "user1", "e1")
	if err != nil {
		t.Fatalf("Neighbors() error: %v", err)
	}
	// Both the outgoing e1->n1 edge and the incoming p1->e1 edge.
	if len(got) != 2 {
		t.Fatalf("Neighbors() returned %d links, want 2", len(got))
	}

	got, err = s.Neighbors(ctx, "user1", "missing")
	if err != nil {
		t.Fatalf("Neighbors() error for missing id: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Neighbors() for missing id = %d links, want 0", len(got))
	}
}

func TestStore_ByKindOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		mem := &models.Memory{
			ID:        string(rune('a' + i)),
			Kind:      models.KindPsyche,
			Content:   "trait",
			Timestamp: base.AddDate(0, 0, i),
		}
		if err := s.Put(ctx, "user1", mem); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	got, err := s.ByKind(ctx, "user1", models.KindPsyche, 3)
	if err != nil {
		t.Fatalf("ByKind() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ByKind() returned %d, want 3", len(got))
	}
	// Newest first.
	if got[0].ID != "e" || got[1].ID != "d" || got[2].ID != "c" {
		t.Errorf("ByKind() order = %s,%s,%s, want e,d,c", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestStore_Counts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	kinds := []models.MemoryKind{models.KindEpisode, models.KindEpisode, models.KindNote}
	for i, k := range kinds {
		mem := &models.Memory{ID: string(rune('x' + i)), Kind: k, Content: "c"}
		if err := s.Put(ctx, "user1", mem); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	counts, err := s.Counts(ctx, "user1")
	if err != nil {
		t.Fatalf("Counts() error: %v", err)
	}
	if counts[models.KindEpisode] != 2 || counts[models.KindNote] != 1 {
		t.Errorf("Counts() = %v, want 2 episodes, 1 note", counts)
	}
}

func TestStore_PutAssignsID(t *testing.T) {
	s := newTestStore(t)

	mem := &models.Memory{Kind: models.KindEpisode, Content: "no id yet"}
	if err := s.Put(context.Background(), "user1", mem); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if mem.ID == "" {
		t.Error("Put() did not assign an id")
	}
}
