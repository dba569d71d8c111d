package cli

import (
	"context"
	"fmt"

	"github.com/geziefer/docchat/config"
	"github.com/geziefer/docchat/internal/adapter/cache"
	"github.com/geziefer/docchat/internal/adapter/embedding"
	"github.com/geziefer/docchat/internal/adapter/extractor"
	"github.com/geziefer/docchat/internal/adapter/index"
	"github.com/geziefer/docchat/internal/adapter/llm"
	"github.com/geziefer/docchat/internal/chat"
	"github.com/geziefer/docchat/internal/chunker"
	"github.com/geziefer/docchat/internal/ingest"
	"github.com/geziefer/docchat/internal/port"
	"github.com/geziefer/docchat/internal/registry"
)

// core bundles the assembled components shared by the commands.
type core struct {
	registry *registry.Registry
	index    port.VectorIndex
	pipeline *ingest.Pipeline
	engine   *chat.Engine
	close    func() error
}

// buildCore wires extractor, chunker, embedder, index, registry, pipeline and
// engine from config. The registry is reconstructed from the index payloads
// on a best-effort basis.
func buildCore(cfg *config.Config, rootDir string) (*core, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	idx, closeIdx, err := buildIndex(cfg, rootDir, embedder.Dimension())
	if err != nil {
		return nil, err
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		closeIdx()
		return nil, err
	}

	reg := registry.New()
	registry.Restore(context.Background(), reg, idx)

	pipeline := ingest.New(
		extractor.New(),
		chunker.New(cfg.Chunker.MaxLength, cfg.Chunker.Overlap),
		embedder,
		idx,
		reg,
		ingest.WithCallTimeout(cfg.IngestTimeout()),
	)

	engineOpts := []chat.Option{
		chat.WithTopK(cfg.Retrieval.TopK),
		chat.WithMinScore(cfg.Retrieval.MinScore),
		chat.WithCallTimeout(cfg.RetrievalTimeout()),
		chat.WithAnswerCache(cache.New(cfg.Retrieval.CacheSize, cfg.CacheTTL())),
	}
	if len(cfg.Retrieval.Markers) > 0 {
		engineOpts = append(engineOpts, chat.WithMarkers(cfg.Retrieval.Markers))
	}
	engine := chat.New(embedder, idx, completer, engineOpts...)

	return &core{
		registry: reg,
		index:    idx,
		pipeline: pipeline,
		engine:   engine,
		close:    closeIdx,
	}, nil
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

func buildCompleter(cfg *config.Config) (port.Completer, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAICompleter(llm.Config{
			APIKeyEnv: cfg.LLM.APIKeyEnv,
			Model:     cfg.LLM.Model,
			BaseURL:   cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

func buildIndex(cfg *config.Config, rootDir string, dimension int) (port.VectorIndex, func() error, error) {
	switch cfg.Index.Backend {
	case "memory":
		return index.NewMemoryIndex(dimension), func() error { return nil }, nil
	case "bolt", "":
		if err := config.EnsureDataDir(rootDir); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		bolt, err := index.NewBoltIndex(cfg.IndexDBPath(rootDir), dimension)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open vector index: %w", err)
		}
		return bolt, bolt.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}
