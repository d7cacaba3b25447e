// Package config loads and validates the recall configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haasonsaas/recall/pkg/models"
)

// Config is the root configuration for the retrieval service.
type Config struct {
	// Namespace is the default user namespace when a request carries none.
	Namespace string `yaml:"namespace"`

	Graph      GraphConfig      `yaml:"graph"`
	Vector     VectorConfig     `yaml:"vector"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Expansion  ExpansionConfig  `yaml:"expansion"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`

	Budget models.ContextBudget `yaml:"budget"`

	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

// GraphConfig selects the graph store backing file.
type GraphConfig struct {
	// Path is the SQLite database file, or ":memory:".
	Path string `yaml:"path"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	// Backend is "sqlite" or "pgvector".
	Backend string `yaml:"backend"`

	// Path is the SQLite vector database file (sqlite backend).
	Path string `yaml:"path"`

	// DSN is the Postgres connection string (pgvector backend).
	DSN string `yaml:"dsn"`

	// Dimension is the embedding dimension (pgvector backend).
	Dimension int `yaml:"dimension"`
}

// EmbeddingsConfig configures the embedding provider for vector search.
type EmbeddingsConfig struct {
	// Provider is "openai"; empty disables vector search.
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

// ExpansionConfig configures the query expansion collaborator.
type ExpansionConfig struct {
	// Provider is "openai" or "fallback".
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

// RetrievalConfig tunes the pipeline.
type RetrievalConfig struct {
	TopK            int  `yaml:"top_k"`
	HopDepth        int  `yaml:"hop_depth"`
	MaxLinksPerNode int  `yaml:"max_links_per_node"`
	IncludeStatic   bool `yaml:"include_static"`
}

// LoggingConfig mirrors observability.LogConfig in file form.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// TracingConfig mirrors observability.TraceConfig in file form.
type TracingConfig struct {
	Endpoint       string  `yaml:"endpoint"`
	ServiceName    string  `yaml:"service_name"`
	ServiceVersion string  `yaml:"service_version"`
	Environment    string  `yaml:"environment"`
	SamplingRate   float64 `yaml:"sampling_rate"`
	EnableInsecure bool    `yaml:"enable_insecure"`
}

// Default returns a configuration that works with no file at all: local
// SQLite stores, fallback expansion, no embeddings.
func Default() *Config {
	return &Config{
		Namespace: "default",
		Graph:     GraphConfig{Path: "recall.db"},
		Vector:    VectorConfig{Backend: "sqlite", Path: "recall.db"},
		Expansion: ExpansionConfig{Provider: "fallback"},
		Retrieval: RetrievalConfig{
			TopK:            5,
			HopDepth:        1,
			MaxLinksPerNode: 15,
			IncludeStatic:   true,
		},
		Budget:  models.DefaultContextBudget(),
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML config file, expanding ${ENV_VAR} references, and
// applies defaults for anything the file leaves unset. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Namespace == "" {
		c.Namespace = d.Namespace
	}
	if c.Graph.Path == "" {
		c.Graph.Path = d.Graph.Path
	}
	if c.Vector.Backend == "" {
		c.Vector.Backend = d.Vector.Backend
	}
	if c.Vector.Backend == "sqlite" && c.Vector.Path == "" {
		c.Vector.Path = c.Graph.Path
	}
	if c.Expansion.Provider == "" {
		c.Expansion.Provider = d.Expansion.Provider
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = d.Retrieval.TopK
	}
	if c.Retrieval.HopDepth == 0 {
		c.Retrieval.HopDepth = d.Retrieval.HopDepth
	}
	if c.Retrieval.MaxLinksPerNode == 0 {
		c.Retrieval.MaxLinksPerNode = d.Retrieval.MaxLinksPerNode
	}
	if c.Budget.TotalTokens == 0 {
		c.Budget = d.Budget
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// Validate rejects configurations that cannot be wired into a working
// engine.
func (c *Config) Validate() error {
	switch c.Vector.Backend {
	case "sqlite", "pgvector":
	default:
		return fmt.Errorf("unknown vector backend %q", c.Vector.Backend)
	}
	if c.Vector.Backend == "pgvector" && c.Vector.DSN == "" {
		return fmt.Errorf("vector.dsn is required for the pgvector backend")
	}

	switch c.Expansion.Provider {
	case "fallback", "openai":
	default:
		return fmt.Errorf("unknown expansion provider %q", c.Expansion.Provider)
	}
	if c.Expansion.Provider == "openai" && c.Expansion.APIKey == "" {
		return fmt.Errorf("expansion.api_key is required for the openai provider")
	}

	switch c.Embeddings.Provider {
	case "", "openai":
	default:
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == "openai" && c.Embeddings.APIKey == "" {
		return fmt.Errorf("embeddings.api_key is required for the openai provider")
	}

	if c.Retrieval.TopK < 0 || c.Retrieval.HopDepth < 0 || c.Retrieval.MaxLinksPerNode < 0 {
		return fmt.Errorf("retrieval tuning values must not be negative")
	}
	return nil
}
