// Package sqlitevec provides a vector index backed by SQLite, scoring with
// in-process cosine similarity.
package sqlitevec

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/haasonsaas/recall/internal/vector"
	"github.com/haasonsaas/recall/internal/vector/embeddings"
	"github.com/haasonsaas/recall/pkg/models"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Index implements vector.Index and vector.Indexer on a SQLite database.
type Index struct {
	db       *sql.DB
	embedder embeddings.Provider
}

var (
	_ vector.Index   = (*Index)(nil)
	_ vector.Indexer = (*Index)(nil)
)

// Config contains configuration for the SQLite vector index.
type Config struct {
	Path     string // Path to SQLite database file; ":memory:" for ephemeral
	Embedder embeddings.Provider
}

// New opens (creating if needed) a SQLite vector index.
func New(cfg Config) (*Index, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Path == ":memory:" || strings.Contains(cfg.Path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	idx := &Index{db: db, embedder: cfg.Embedder}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (x *Index) init() error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS vectors (
			id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			timestamp DATETIME,
			embedding BLOB NOT NULL,
			PRIMARY KEY (namespace, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vectors table: %w", err)
	}
	_, err = x.db.Exec("CREATE INDEX IF NOT EXISTS idx_vectors_timestamp ON vectors(namespace, timestamp)")
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Index stores entries, generating embeddings for those without one.
func (x *Index) Index(ctx context.Context, namespace string, entries []*models.Memory) error {
	if len(entries) == 0 {
		return nil
	}

	var needsEmbedding []*models.Memory
	for _, entry := range entries {
		if len(entry.Embedding) == 0 && entry.Content != "" {
			needsEmbedding = append(needsEmbedding, entry)
		}
	}
	if len(needsEmbedding) > 0 {
		texts := make([]string, len(needsEmbedding))
		for i, entry := range needsEmbedding {
			texts[i] = embeddingText(entry)
		}
		vecs, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		for i, entry := range needsEmbedding {
			entry.Embedding = vecs[i]
		}
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO vectors (id, namespace, timestamp, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if len(entry.Embedding) == 0 {
			continue
		}
		var ts any
		if !entry.Timestamp.IsZero() {
			ts = entry.Timestamp
		}
		if _, err := stmt.ExecContext(ctx, entry.ID, namespace, ts, encodeEmbedding(entry.Embedding)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert vector %s: %w", entry.ID, err)
		}
	}
	return tx.Commit()
}

// Search embeds the query and returns the most similar ids, best first.
func (x *Index) Search(ctx context.Context, namespace, query string, opts vector.SearchOptions) ([]vector.Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	queryEmbed, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	sqlQuery := "SELECT id, timestamp, embedding FROM vectors WHERE namespace = ?"
	args := []any{namespace}
	if opts.DateRange != nil {
		start := dayStart(opts.DateRange.Start)
		end := dayEnd(opts.DateRange.End)
		sqlQuery += " AND timestamp >= ? AND timestamp <= ?"
		args = append(args, start, end)
	}

	rows, err := x.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.Result
	for rows.Next() {
		var id string
		var ts sql.NullTime
		var blob []byte
		if err := rows.Scan(&id, &ts, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}
		score := cosineSimilarity(queryEmbed, decodeEmbedding(blob))
		results = append(results, vector.Result{ID: id, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Close releases the underlying database handle.
func (x *Index) Close() error {
	return x.db.Close()
}

func embeddingText(m *models.Memory) string {
	if m.Title == "" {
		return m.Content
	}
	return m.Title + "\n" + m.Content
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// encodeEmbedding converts []float32 to bytes for storage.
func encodeEmbedding(embedding []float32) []byte {
	if len(embedding) == 0 {
		return nil
	}
	data := make([]byte, len(embedding)*4)
	for i, f := range embedding {
		bits := math.Float32bits(f)
		data[i*4] = byte(bits)
		data[i*4+1] = byte(bits >> 8)
		data[i*4+2] = byte(bits >> 16)
		data[i*4+3] = byte(bits >> 24)
	}
	return data
}

// decodeEmbedding converts bytes back to []float32.
func decodeEmbedding(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		bits := uint32(data[i*4]) |
			uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 |
			uint32(data[i*4+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
