package main

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
	"github.com/shoppingmate-ai/server/internal/agent/graph"
	"github.com/shoppingmate-ai/server/internal/agent/graph/nodes"
	"github.com/shoppingmate-ai/server/internal/agent/llm"
	"github.com/shoppingmate-ai/server/internal/secrets"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"

	backendMemory = "memory"
	backendVector = "vector"
)

// Deps is the client bundle built once at startup and injected everywhere.
type Deps struct {
	GenAI     *genai.Client
	Catalog   catalog.Catalog
	Generator llm.Generator

	closers []func()
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func wire(ctx context.Context, cfg *AppConfig) (*Deps, error) {
	deps := &Deps{}

	if cfg.APIKey != "" {
		client, err := nodes.NewGenAIClient(ctx, cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		deps.GenAI = client
	} else {
		logx.Warn().Msg("GEMINI_API_KEY not set; vision and embeddings are disabled")
	}

	c, err := deps.buildCatalog(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Catalog = c

	gen, err := deps.buildGenerator(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Generator = gen
	return deps, nil
}

func (d *Deps) buildCatalog(ctx context.Context, cfg *AppConfig) (catalog.Catalog, error) {
	var c catalog.Catalog
	switch cfg.Catalog.Backend {
	case backendMemory:
		products := catalog.DefaultProducts()
		if cfg.Catalog.ParquetPath != "" {
			loaded, err := catalog.LoadParquet(cfg.Catalog.ParquetPath)
			if err != nil {
				return nil, fmt.Errorf("load catalog: %w", err)
			}
			products = loaded
		}
		c = catalog.NewMemory(products)
	case backendVector:
		c = d.buildVectorCatalog(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown CATALOG_BACKEND %q", cfg.Catalog.Backend)
	}

	if !cfg.Redis.Enabled() || !c.Ready() {
		return c, nil
	}
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("Redis unreachable; catalog cache disabled")
		return c, nil
	}
	d.closers = append(d.closers, func() { _ = rdb.Close() })
	logx.Info().Dur("ttl", cfg.Catalog.CacheTTL).Msg("Catalog cache enabled")
	return catalog.NewCached(c, rdb, cfg.Catalog.CacheTTL), nil
}

// buildVectorCatalog never fails: any startup error leaves an Unavailable
// catalog so the server still answers with a "database not available" action.
func (d *Deps) buildVectorCatalog(ctx context.Context, cfg *AppConfig) catalog.Catalog {
	unavailable := func(err error) catalog.Catalog {
		logx.Error().Err(err).Str("backend", backendVector).Msg("Catalog backend not available")
		return catalog.NewUnavailable(backendVector, err)
	}

	if d.GenAI == nil {
		return unavailable(fmt.Errorf("GEMINI_API_KEY is required for embeddings"))
	}
	if !cfg.AlloyDB.Enabled() {
		return unavailable(fmt.Errorf("ALLOYDB_HOST is not set"))
	}

	var source secrets.Source
	if cfg.Secrets.Password != "" {
		source = secrets.Static(cfg.Secrets.Password)
	} else {
		client, err := secrets.NewSecretManagerClient(ctx)
		if err != nil {
			return unavailable(err)
		}
		d.closers = append(d.closers, func() { _ = client.Close() })
		source = secrets.NewSecretManager(client, cfg.Secrets.ProjectID, cfg.Secrets.SecretName)
	}

	password, err := source.Password(ctx)
	if err != nil {
		return unavailable(err)
	}
	pool, err := cfg.AlloyDB.New(ctx, password)
	if err != nil {
		return unavailable(err)
	}
	d.closers = append(d.closers, pool.Close)

	logx.Info().Str("table", cfg.AlloyDB.TableName).Msg("Vector catalog connected")
	embedder := catalog.NewGenAIEmbedder(d.GenAI, cfg.Catalog.EmbeddingModel)
	return catalog.NewVector(pool, embedder, cfg.AlloyDB.TableName)
}

func (d *Deps) buildGenerator(ctx context.Context, cfg *AppConfig) (llm.Generator, error) {
	switch cfg.Action.Provider {
	case providerOpenAI:
		if cfg.Action.Mode == llm.ModeAgent {
			return nil, fmt.Errorf("LLM_MODE=agent requires LLM_PROVIDER=gemini")
		}
		if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required")
		}
		return llm.NewOpenAIGenerator(&cfg.OpenAI, &cfg.Action), nil
	case providerGemini:
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Action.Provider)
	}

	if d.GenAI == nil {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for LLM_PROVIDER=gemini")
	}
	cm, err := nodes.NewActionChatModel(ctx, d.GenAI, &cfg.Action)
	if err != nil {
		return nil, err
	}

	switch cfg.Action.Mode {
	case llm.ModeDirect:
		return llm.NewGeminiGenerator(cm, cfg.Action.Model), nil
	case llm.ModeAgent:
		runner, err := graph.BuildAgentGraph(ctx, &graph.GraphConfig{
			ChatModel:    cm,
			ModelName:    cfg.Action.Model,
			Catalog:      d.Catalog,
			ToolMaxCalls: cfg.Agent.MaxToolCalls,
		})
		if err != nil {
			return nil, err
		}
		return llm.NewAgentGenerator(runner), nil
	default:
		return nil, fmt.Errorf("unknown LLM_MODE %q", cfg.Action.Mode)
	}
}
