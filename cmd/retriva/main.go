// Command retriva is the entry point for the Retriva CLI. It wires the
// driven adapters (storage, embeddings, reranking, config) into the core
// services and hands them to the command layer.
package main

import (
	"context"
	"fmt"
	"os"

	filecfg "github.com/custodia-labs/retriva-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/rerank/jina"
	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/retriva-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/retriva-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/retriva-cli/internal/cache"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
	"github.com/custodia-labs/retriva-cli/internal/core/services"
	"github.com/custodia-labs/retriva-cli/internal/normalisers"
	"github.com/custodia-labs/retriva-cli/internal/normalisers/docx"
	"github.com/custodia-labs/retriva-cli/internal/normalisers/html"
	"github.com/custodia-labs/retriva-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/retriva-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/retriva-cli/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	configStore, err := filecfg.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}

	embedder, err := buildEmbedder(configStore)
	if err != nil {
		return err
	}

	store, err := buildStore(ctx, configStore, embedder)
	if err != nil {
		return err
	}

	reranker, err := buildReranker(configStore)
	if err != nil {
		return err
	}

	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())
	registry.Register(html.New())
	registry.Register(docx.New())

	settings := services.NewSettingsService(configStore)
	cfg, err := settings.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	pipeline, err := buildPipeline(cfg.Segmenter.TargetSize, cfg.Segmenter.MinSize, cfg.Segmenter.MaxSize, cfg.Segmenter.OverlapSize)
	if err != nil {
		return err
	}

	contextCache := cache.New()

	ingest := services.NewIngestService(store, registry, pipeline, embedder,
		services.WithIngestCache(contextCache))
	retrieval := services.NewRetrievalService(store, embedder, reranker,
		services.WithRetrievalCache(contextCache),
		services.WithBoostFactor(cfg.BoostFactor))
	document := services.NewDocumentService(store, contextCache)
	validation := services.NewValidationService()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Retrieval:  retrieval,
		Ingest:     ingest,
		Document:   document,
		Settings:   settings,
		Validation: validation,
	})

	return cli.Execute()
}

// buildEmbedder constructs the embedding service selected by config.
// Supported providers: ollama (default, local) and openai.
func buildEmbedder(configStore driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := configStore.GetString("embedding.provider")

	switch provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    configStore.GetString("embedding.base_url"),
			Model:      configStore.GetString("embedding.model"),
			Dimensions: configStore.GetInt("embedding.dimensions"),
		}), nil

	case "openai":
		apiKey := configStore.GetString("embedding.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     apiKey,
			BaseURL:    configStore.GetString("embedding.base_url"),
			Model:      configStore.GetString("embedding.model"),
			Dimensions: configStore.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedding: %w", err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// buildStore selects postgres/pgvector when a DSN is configured and
// falls back to the embedded sqlite store otherwise.
func buildStore(ctx context.Context, configStore driven.ConfigStore, embedder driven.EmbeddingService) (driven.SegmentStore, error) {
	dsn := configStore.GetString("storage.postgres_dsn")
	if dsn == "" {
		dsn = os.Getenv("RETRIVA_POSTGRES_DSN")
	}

	if dsn != "" {
		store, err := postgres.NewStore(ctx, postgres.Config{
			ConnString: dsn,
			Dimensions: embedder.Dimensions(),
		})
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, nil
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	return store, nil
}

// buildReranker constructs the remote rerank provider when an API key
// is configured. Without one the rerank chain degrades to the local
// lexical tier.
func buildReranker(configStore driven.ConfigStore) (driven.RerankService, error) {
	apiKey := configStore.GetString("rerank.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("JINA_API_KEY")
	}
	if apiKey == "" {
		return nil, nil
	}

	svc, err := jina.NewRerankService(jina.Config{
		APIKey: apiKey,
		Model:  configStore.GetString("rerank.model"),
	})
	if err != nil {
		return nil, fmt.Errorf("jina rerank: %w", err)
	}
	return svc, nil
}

// buildPipeline assembles the post-processing pipeline from the
// persisted segmenter settings.
func buildPipeline(targetSize, minSize, maxSize, overlap int) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	segmenter, err := registry.Build("segmenter", map[string]any{
		"target_size": targetSize,
		"min_size":    minSize,
		"max_size":    maxSize,
		"overlap":     overlap,
	})
	if err != nil {
		return nil, fmt.Errorf("build segmenter: %w", err)
	}

	return postprocessors.NewPipeline(segmenter), nil
}
