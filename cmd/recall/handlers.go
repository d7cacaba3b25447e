// handlers.go contains the command implementations: wiring configuration
// into stores, the engine, and the collaborators.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/haasonsaas/recall/internal/config"
	"github.com/haasonsaas/recall/internal/expansion"
	"github.com/haasonsaas/recall/internal/graph/sqlite"
	"github.com/haasonsaas/recall/internal/observability"
	"github.com/haasonsaas/recall/internal/retrieval"
	"github.com/haasonsaas/recall/internal/vector"
	"github.com/haasonsaas/recall/internal/vector/embeddings"
	"github.com/haasonsaas/recall/internal/vector/embeddings/openai"
	"github.com/haasonsaas/recall/internal/vector/pgvector"
	"github.com/haasonsaas/recall/internal/vector/sqlitevec"
	"github.com/haasonsaas/recall/pkg/models"
)

func runQuery(ctx context.Context, query string, flags queryFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	store, err := sqlite.New(sqlite.Config{Path: cfg.Graph.Path})
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	index, err := buildVectorIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(index)

	expander, err := buildExpansionClient(cfg, logger)
	if err != nil {
		return err
	}

	tracer, shutdown := observability.NewTracer(observability.TraceConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		EnableInsecure: cfg.Tracing.EnableInsecure,
	})
	defer shutdown(ctx)

	engine := retrieval.NewEngine(expander, index, store, retrieval.Options{
		TopK:            cfg.Retrieval.TopK,
		HopDepth:        cfg.Retrieval.HopDepth,
		MaxLinksPerNode: cfg.Retrieval.MaxLinksPerNode,
		IncludeStatic:   cfg.Retrieval.IncludeStatic,
		Budget:          cfg.Budget,
		Logger:          logger,
		Tracer:          tracer,
	})

	namespace := flags.namespace
	if namespace == "" {
		namespace = cfg.Namespace
	}

	result, err := engine.Retrieve(ctx, retrieval.Request{
		Namespace:       namespace,
		Query:           query,
		Timezone:        flags.timezone,
		TopK:            flags.topK,
		HopDepth:        flags.hopDepth,
		MaxLinksPerNode: flags.fanOut,
		View:            models.ContextView(flags.view),
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Context)

	if flags.showStats {
		stats, err := json.MarshalIndent(result.Stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		fmt.Println(string(stats))
	}
	return nil
}

// importFile is the JSON export format accepted by the import command.
type importFile struct {
	Memories []importMemory      `json:"memories"`
	Links    []models.MemoryLink `json:"links"`
}

// importMemory wraps Memory so an absent importance can be told apart
// from an explicit zero.
type importMemory struct {
	models.Memory
	Importance *float64 `json:"importance"`
}

func runImport(ctx context.Context, path, configPath, namespace string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if namespace == "" {
		namespace = cfg.Namespace
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	var export importFile
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}

	store, err := sqlite.New(sqlite.Config{Path: cfg.Graph.Path})
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	memories := make([]*models.Memory, 0, len(export.Memories))
	for i := range export.Memories {
		m := export.Memories[i].Memory
		if export.Memories[i].Importance != nil {
			m.Importance = *export.Memories[i].Importance
			m.HasImportance = true
		}
		m.Kind = models.ParseMemoryKind(string(m.Kind))
		if err := store.Put(ctx, namespace, &m); err != nil {
			return fmt.Errorf("import memory %d: %w", i, err)
		}
		memories = append(memories, &m)
	}

	for i, link := range export.Links {
		if err := store.PutLink(ctx, namespace, link); err != nil {
			return fmt.Errorf("import link %d: %w", i, err)
		}
	}

	index, err := buildVectorIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(index)
	if indexer, ok := index.(vector.Indexer); ok {
		if err := indexer.Index(ctx, namespace, memories); err != nil {
			return fmt.Errorf("index memories: %w", err)
		}
	}

	fmt.Printf("imported %d memories, %d links into namespace %q\n",
		len(memories), len(export.Links), namespace)
	return nil
}

func runStats(ctx context.Context, configPath, namespace string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if namespace == "" {
		namespace = cfg.Namespace
	}

	store, err := sqlite.New(sqlite.Config{Path: cfg.Graph.Path})
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	counts, err := store.Counts(ctx, namespace)
	if err != nil {
		return err
	}

	for _, kind := range []models.MemoryKind{models.KindEpisode, models.KindPsyche, models.KindNote} {
		fmt.Printf("%-10s %d\n", kind, counts[kind])
	}
	return nil
}

func closeIndex(index vector.Index) {
	if c, ok := index.(interface{ Close() error }); ok {
		c.Close()
	}
}

func newLogger(cfg *config.Config) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
}

// buildVectorIndex wires the configured vector backend, or returns nil
// when no embedding provider is configured; retrieval then degrades to
// static context.
func buildVectorIndex(cfg *config.Config) (vector.Index, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, nil
	}

	switch cfg.Vector.Backend {
	case "pgvector":
		idx, err := pgvector.New(pgvector.Config{
			DSN:           cfg.Vector.DSN,
			Dimension:     cfg.Vector.Dimension,
			Embedder:      embedder,
			RunMigrations: true,
		})
		if err != nil {
			return nil, fmt.Errorf("open pgvector index: %w", err)
		}
		return idx, nil
	default:
		idx, err := sqlitevec.New(sqlitevec.Config{
			Path:     cfg.Vector.Path,
			Embedder: embedder,
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite vector index: %w", err)
		}
		return idx, nil
	}
}

func buildEmbedder(cfg *config.Config) (embeddings.Provider, error) {
	if cfg.Embeddings.Provider != "openai" {
		return nil, nil
	}
	return openai.New(openai.Config{
		APIKey:  cfg.Embeddings.APIKey,
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
	})
}

func buildExpansionClient(cfg *config.Config, logger *observability.Logger) (expansion.Client, error) {
	if cfg.Expansion.Provider != "openai" {
		return nil, nil
	}
	return expansion.NewOpenAIClient(expansion.OpenAIConfig{
		APIKey:  cfg.Expansion.APIKey,
		BaseURL: cfg.Expansion.BaseURL,
		Model:   cfg.Expansion.Model,
		Logger:  logger,
	})
}
