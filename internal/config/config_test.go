package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Namespace != "default" {
		t.Errorf("Namespace = %q", cfg.Namespace)
	}
	if cfg.Vector.Backend != "sqlite" {
		t.Errorf("Vector.Backend = %q", cfg.Vector.Backend)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.HopDepth != 1 || cfg.Retrieval.MaxLinksPerNode != 15 {
		t.Errorf("retrieval defaults = %+v", cfg.Retrieval)
	}
	if cfg.Budget.TotalTokens != 4000 {
		t.Errorf("Budget.TotalTokens = %d", cfg.Budget.TotalTokens)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
namespace: alice
graph:
  path: /tmp/alice.db
retrieval:
  top_k: 8
  hop_depth: 2
budget:
  total_tokens: 2000
  user_card_budget: 200
  psyche_budget: 400
  episode_budget: 1000
  note_budget: 400
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Namespace != "alice" {
		t.Errorf("Namespace = %q", cfg.Namespace)
	}
	if cfg.Retrieval.TopK != 8 || cfg.Retrieval.HopDepth != 2 {
		t.Errorf("Retrieval = %+v", cfg.Retrieval)
	}
	// Unset values keep their defaults.
	if cfg.Retrieval.MaxLinksPerNode != 15 {
		t.Errorf("MaxLinksPerNode = %d, want default 15", cfg.Retrieval.MaxLinksPerNode)
	}
	if cfg.Budget.TotalTokens != 2000 {
		t.Errorf("Budget.TotalTokens = %d", cfg.Budget.TotalTokens)
	}
	// The sqlite vector index shares the graph database file by default.
	if cfg.Vector.Path != "/tmp/alice.db" {
		t.Errorf("Vector.Path = %q", cfg.Vector.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("RECALL_TEST_KEY", "sk-from-env")
	path := writeConfig(t, `
expansion:
  provider: openai
  api_key: ${RECALL_TEST_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Expansion.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want value from environment", cfg.Expansion.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown vector backend",
			content: "vector:\n  backend: faiss\n",
			wantErr: "unknown vector backend",
		},
		{
			name:    "pgvector requires dsn",
			content: "vector:\n  backend: pgvector\n",
			wantErr: "vector.dsn is required",
		},
		{
			name:    "openai expansion requires key",
			content: "expansion:\n  provider: openai\n",
			wantErr: "expansion.api_key is required",
		},
		{
			name:    "unknown expansion provider",
			content: "expansion:\n  provider: anthropic\n",
			wantErr: "unknown expansion provider",
		},
		{
			name:    "openai embeddings require key",
			content: "embeddings:\n  provider: openai\n",
			wantErr: "embeddings.api_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
