package sqlitevec

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/haasonsaas/recall/internal/vector"
	"github.com/haasonsaas/recall/pkg/models"
)

// fakeEmbedder maps known phrases to fixed unit vectors so similarity
// ordering is deterministic without a real embedding model.
type fakeEmbedder struct{}

func (fakeEmbedder) Name() string   { return "fake" }
func (fakeEmbedder) Dimension() int { return 3 }

func (f fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "running"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "cooking"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(Config{Path: ":memory:", Embedder: fakeEmbedder{}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndex_SearchRanksBySimilarity(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	entries := []*models.Memory{
		{ID: "run", Content: "went running in the park"},
		{ID: "cook", Content: "tried a new cooking recipe"},
	}
	if err := idx.Index(ctx, "user1", entries); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	results, err := idx.Search(ctx, "user1", "running shoes", vector.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].ID != "run" {
		t.Errorf("top result = %q, want run", results[0].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not sorted by score: %v", results)
	}
}

func TestIndex_SearchLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	var entries []*models.Memory
	for _, id := range []string{"a", "b", "c", "d"} {
		entries = append(entries, &models.Memory{ID: id, Content: "went running " + id})
	}
	if err := idx.Index(ctx, "user1", entries); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	results, err := idx.Search(ctx, "user1", "running", vector.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search() returned %d results, want 2", len(results))
	}
}

func TestIndex_SearchDateFilter(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	entries := []*models.Memory{
		{ID: "old", Content: "went running long ago", Timestamp: time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "new", Content: "went running recently", Timestamp: time.Date(2025, 12, 24, 10, 0, 0, 0, time.UTC)},
	}
	if err := idx.Index(ctx, "user1", entries); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	results, err := idx.Search(ctx, "user1", "running", vector.SearchOptions{
		Limit: 10,
		DateRange: &models.DateRange{
			Start: time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("date-filtered Search() = %v, want only new", results)
	}
}

func TestIndex_NamespaceIsolation(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, "alice", []*models.Memory{{ID: "a1", Content: "went running"}}); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	results, err := idx.Search(ctx, "bob", "running", vector.SearchOptions{Limit: 5})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() leaked %d results across namespaces", len(results))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeEmbedding(t *testing.T) {
	original := []float32{0.1, -0.5, 3.25, 0}
	decoded := decodeEmbedding(encodeEmbedding(original))
	if len(decoded) != len(original) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], original[i])
		}
	}

	if decodeEmbedding(nil) != nil {
		t.Error("decodeEmbedding(nil) should be nil")
	}
	if decodeEmbedding([]byte{1, 2, 3}) != nil {
		t.Error("decodeEmbedding of truncated data should be nil")
	}
}
