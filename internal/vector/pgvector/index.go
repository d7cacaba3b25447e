// Package pgvector provides a vector index backed by PostgreSQL with the
// pgvector extension.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/haasonsaas/recall/internal/vector"
	"github.com/haasonsaas/recall/internal/vector/embeddings"
	"github.com/haasonsaas/recall/pkg/models"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Index implements vector.Index and vector.Indexer on pgvector.
type Index struct {
	db       *sql.DB
	embedder embeddings.Provider
	ownsDB   bool
}

var (
	_ vector.Index   = (*Index)(nil)
	_ vector.Indexer = (*Index)(nil)
)

// Config contains configuration for the pgvector index.
type Config struct {
	// DSN is the PostgreSQL connection string. If empty, DB must be set.
	DSN string

	// DB is an existing database connection to reuse. If provided, DSN
	// is ignored and the index will not close the connection.
	DB *sql.DB

	// Dimension is the embedding dimension.
	Dimension int

	// Embedder turns query and entry text into vectors.
	Embedder embeddings.Provider

	// RunMigrations controls whether the schema is created on startup.
	RunMigrations bool
}

// New creates a new pgvector index.
func New(cfg Config) (*Index, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = cfg.Embedder.Dimension()
	}

	var db *sql.DB
	var ownsDB bool
	var err error

	switch {
	case cfg.DB != nil:
		db = cfg.DB
	case cfg.DSN != "":
		db, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		ownsDB = true

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	default:
		return nil, fmt.Errorf("either DSN or DB must be provided")
	}

	x := &Index{db: db, embedder: cfg.Embedder, ownsDB: ownsDB}
	if cfg.RunMigrations {
		if err := x.migrate(context.Background(), cfg.Dimension); err != nil {
			if ownsDB {
				db.Close()
			}
			return nil, err
		}
	}
	return x, nil
}

func (x *Index) migrate(ctx context.Context, dimension int) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS memory_vectors (
			id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			ts TIMESTAMPTZ,
			embedding vector(%d) NOT NULL,
			PRIMARY KEY (namespace, id)
		)`, dimension),
		"CREATE INDEX IF NOT EXISTS idx_memory_vectors_ts ON memory_vectors(namespace, ts)",
	}
	for _, stmt := range statements {
		if _, err := x.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
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
			texts[i] = entry.Content
		}
		vecs, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		for i, entry := range needsEmbedding {
			entry.Embedding = vecs[i]
		}
	}

	for _, entry := range entries {
		embedding := encodeEmbedding(entry.Embedding)
		if !embedding.Valid {
			continue
		}
		var ts any
		if !entry.Timestamp.IsZero() {
			ts = entry.Timestamp
		}
		_, err := x.db.ExecContext(ctx, `
			INSERT INTO memory_vectors (id, namespace, ts, embedding)
			VALUES ($1, $2, $3, $4::vector)
			ON CONFLICT (namespace, id) DO UPDATE SET ts = EXCLUDED.ts, embedding = EXCLUDED.embedding
		`, entry.ID, namespace, ts, embedding.String)
		if err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", entry.ID, err)
		}
	}
	return nil
}

// Search embeds the query and returns the most similar ids, best first,
// using the pgvector cosine distance operator.
func (x *Index) Search(ctx context.Context, namespace, query string, opts vector.SearchOptions) ([]vector.Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	queryEmbed, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	embedding := encodeEmbedding(queryEmbed)
	if !embedding.Valid {
		return nil, fmt.Errorf("query embedding is empty")
	}

	sqlQuery := `
		SELECT id, 1 - (embedding <=> $1::vector) AS similarity
		FROM memory_vectors
		WHERE namespace = $2`
	args := []any{embedding.String, namespace}
	argNum := 3

	if opts.DateRange != nil {
		sqlQuery += fmt.Sprintf(" AND ts >= $%d AND ts <= $%d", argNum, argNum+1)
		args = append(args, dayStart(opts.DateRange.Start), dayEnd(opts.DateRange.End))
		argNum += 2
	}

	sqlQuery += fmt.Sprintf(" ORDER BY embedding <=> $1::vector ASC LIMIT $%d", argNum)
	args = append(args, opts.Limit)

	rows, err := x.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []vector.Result
	for rows.Next() {
		var r vector.Result
		if err := rows.Scan(&r.ID, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close releases the database connection if this index owns it.
func (x *Index) Close() error {
	if x.ownsDB {
		return x.db.Close()
	}
	return nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// encodeEmbedding converts []float32 to the pgvector string format: [0.1,0.2,...]
func encodeEmbedding(embedding []float32) sql.NullString {
	if len(embedding) == 0 {
		return sql.NullString{}
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sql.NullString{String: sb.String(), Valid: true}
}
