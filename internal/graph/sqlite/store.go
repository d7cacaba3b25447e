// Package sqlite provides a graph store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/recall/internal/graph"
	"github.com/haasonsaas/recall/pkg/models"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Store implements graph.Store and graph.Writer on a SQLite database.
type Store struct {
	db *sql.DB
}

var (
	_ graph.Store  = (*Store)(nil)
	_ graph.Writer = (*Store)(nil)
)

// Config contains configuration for the SQLite graph store.
type Config struct {
	Path string // Path to SQLite database file; ":memory:" for ephemeral
}

// New opens (creating if needed) a SQLite graph store.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Path == ":memory:" || strings.Contains(cfg.Path, "mode=memory") {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			timestamp DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			importance REAL,
			subtype TEXT,
			status TEXT,
			due_date DATETIME,
			session_id TEXT,
			source_type TEXT,
			source_ref TEXT,
			PRIMARY KEY (namespace, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create memories table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS links (
			namespace TEXT NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			relation TEXT NOT NULL,
			PRIMARY KEY (namespace, source_id, target_id, relation)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create links table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_memories_kind ON memories(namespace, kind)",
		"CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories(namespace, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_links_source ON links(namespace, source_id)",
		"CREATE INDEX IF NOT EXISTS idx_links_target ON links(namespace, target_id)",
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

const memoryColumns = "id, kind, title, content, timestamp, created_at, importance, subtype, status, due_date, session_id, source_type, source_ref"

// Get resolves a memory by id. Returns nil, nil when not found.
func (s *Store) Get(ctx context.Context, namespace, id string) (*models.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE namespace = ? AND id = ?",
		namespace, id)
	mem, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory %s: %w", id, err)
	}
	return mem, nil
}

// Neighbors returns all edges touching the given memory, both directions.
func (s *Store) Neighbors(ctx context.Context, namespace, id string) ([]models.MemoryLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, relation FROM links
		WHERE namespace = ? AND (source_id = ? OR target_id = ?)
	`, namespace, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query links for %s: %w", id, err)
	}
	defer rows.Close()

	var links []models.MemoryLink
	for rows.Next() {
		var l models.MemoryLink
		if err := rows.Scan(&l.SourceID, &l.TargetID, &l.Relation); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ByKind lists memories of one kind, most recent first.
func (s *Store) ByKind(ctx context.Context, namespace string, kind models.MemoryKind, limit int) ([]*models.Memory, error) {
	return s.listByKind(ctx, namespace, kind, limit)
}

// Recent lists the most recent memories of one kind, newest first.
func (s *Store) Recent(ctx context.Context, namespace string, kind models.MemoryKind, limit int) ([]*models.Memory, error) {
	return s.listByKind(ctx, namespace, kind, limit)
}

func (s *Store) listByKind(ctx context.Context, namespace string, kind models.MemoryKind, limit int) ([]*models.Memory, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE namespace = ? AND kind = ? ORDER BY timestamp DESC LIMIT ?",
		namespace, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s memories: %w", kind, err)
	}
	defer rows.Close()

	var memories []*models.Memory
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, mem)
	}
	return memories, rows.Err()
}

// Put inserts or replaces a memory.
func (s *Store) Put(ctx context.Context, namespace string, mem *models.Memory) error {
	if mem.ID == "" {
		mem.ID = uuid.New().String()
	}
	if mem.CreatedAt.IsZero() {
		mem.CreatedAt = time.Now().UTC()
	}

	var importance any
	if mem.HasImportance {
		importance = mem.Importance
	}
	var timestamp any
	if !mem.Timestamp.IsZero() {
		timestamp = mem.Timestamp
	}
	var dueDate any
	if mem.DueDate != nil {
		dueDate = *mem.DueDate
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO memories
			(id, namespace, kind, title, content, timestamp, created_at, importance, subtype, status, due_date, session_id, source_type, source_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		mem.ID, namespace, string(mem.Kind), mem.Title, mem.Content,
		timestamp, mem.CreatedAt, importance,
		nullString(mem.Subtype), nullString(mem.Status), dueDate,
		nullString(mem.SessionID), nullString(mem.SourceType), nullString(mem.SourceRef),
	)
	if err != nil {
		return fmt.Errorf("failed to put memory %s: %w", mem.ID, err)
	}
	return nil
}

// PutLink inserts or replaces an edge.
func (s *Store) PutLink(ctx context.Context, namespace string, link models.MemoryLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO links (namespace, source_id, target_id, relation)
		VALUES (?, ?, ?, ?)
	`, namespace, link.SourceID, link.TargetID, link.Relation)
	if err != nil {
		return fmt.Errorf("failed to put link %s->%s: %w", link.SourceID, link.TargetID, err)
	}
	return nil
}

// Counts returns the number of memories per kind in a namespace.
func (s *Store) Counts(ctx context.Context, namespace string) (map[models.MemoryKind]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM memories WHERE namespace = ? GROUP BY kind", namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to count memories: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.MemoryKind]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.ParseMemoryKind(kind)] = n
	}
	return counts, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*models.Memory, error) {
	var (
		mem        models.Memory
		kind       string
		timestamp  sql.NullTime
		createdAt  sql.NullTime
		importance sql.NullFloat64
		subtype    sql.NullString
		status     sql.NullString
		dueDate    sql.NullTime
		sessionID  sql.NullString
		sourceType sql.NullString
		sourceRef  sql.NullString
	)
	err := row.Scan(&mem.ID, &kind, &mem.Title, &mem.Content,
		&timestamp, &createdAt, &importance, &subtype, &status, &dueDate,
		&sessionID, &sourceType, &sourceRef)
	if err != nil {
		return nil, err
	}

	mem.Kind = models.ParseMemoryKind(kind)
	if timestamp.Valid {
		mem.Timestamp = timestamp.Time
	}
	if createdAt.Valid {
		mem.CreatedAt = createdAt.Time
	}
	if importance.Valid {
		mem.Importance = importance.Float64
		mem.HasImportance = true
	}
	mem.Subtype = subtype.String
	mem.Status = status.String
	if dueDate.Valid {
		due := dueDate.Time
		mem.DueDate = &due
	}
	mem.SessionID = sessionID.String
	mem.SourceType = sourceType.String
	mem.SourceRef = sourceRef.String
	return &mem, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
