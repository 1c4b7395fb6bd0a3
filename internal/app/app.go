// Package app is the composition root shared by the API server and the CLI:
// it turns a Config into wired services.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/config"
	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
	dbRedis "github.com/kailas-cloud/simcheck/internal/db/redis"
	"github.com/kailas-cloud/simcheck/internal/metrics"
	"github.com/kailas-cloud/simcheck/internal/repository/embcache"
	"github.com/kailas-cloud/simcheck/internal/repository/gaprun"
	indexrepo "github.com/kailas-cloud/simcheck/internal/repository/index"
	"github.com/kailas-cloud/simcheck/internal/repository/taxonomy"
	openaiTransport "github.com/kailas-cloud/simcheck/internal/transport/openai"
	"github.com/kailas-cloud/simcheck/internal/transport/qdrant"
	embeddinguc "github.com/kailas-cloud/simcheck/internal/usecase/embedding"
	gapuc "github.com/kailas-cloud/simcheck/internal/usecase/gap"
	healthuc "github.com/kailas-cloud/simcheck/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/simcheck/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/simcheck/internal/usecase/search"
	similarityuc "github.com/kailas-cloud/simcheck/internal/usecase/similarity"
)

// VectorIndex is what every backend offers: the read and write sides of a
// collection, its lifecycle and a liveness probe.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, points []document.Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error)
	DropCollection(ctx context.Context, collection string) error
	Count(ctx context.Context, collection string) (int, error)
	Ping(ctx context.Context) error
}

// Options selects optional components.
type Options struct {
	// RunStore opens the SQLite gap run store and builds the background Runner.
	RunStore bool
}

// App holds the wired services.
type App struct {
	Config     config.Config
	Embedder   domain.Embedder
	Index      VectorIndex
	Similarity *similarityuc.Service
	Search     *searchuc.Service
	Indexer    *indexeruc.Service
	Planner    *gapuc.Planner
	Analyzer   *gapuc.Analyzer
	Runner     *gapuc.Runner // nil unless Options.RunStore
	Health     *healthuc.Service

	closers []func() error
}

// Build wires every service from cfg. Missing embedding credentials fail
// here, before any network call; a missing narrative key only disables
// narratives.
func Build(ctx context.Context, cfg config.Config, opts Options, logger *zap.Logger) (*App, error) {
	if err := cfg.RequireEmbedding(); err != nil {
		return nil, err
	}
	if err := cfg.RequireQdrant(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	var kv *dbRedis.Store
	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Database.Addrs, Password: cfg.Database.Password, ClientName: "simcheck"})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		a.closers = append(a.closers, func() error { store.Close(); return nil })
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			return nil, fmt.Errorf("%s not ready: %w", cfg.Database.Driver, err)
		}
		kv = store
		a.Index = &redisIndex{
			Repo: indexrepo.New(store, indexrepo.Options{
				KeyPrefix:       cfg.Storage.KeyPrefix,
				Dimensions:      cfg.Embedding.Dimensions,
				HNSWM:           cfg.Index.HNSWM,
				HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
			}),
			store: store,
		}
	case config.DriverQdrant:
		a.Index = qdrant.New(qdrant.Config{
			URL:        cfg.Database.URL,
			APIKey:     cfg.Database.APIKey,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	logger.Info("vector index ready", zap.String("driver", cfg.Database.Driver))

	a.Embedder = buildEmbedder(cfg, kv, logger)

	var narrator similarityuc.Narrator
	if err := cfg.RequireNarrative(); err != nil {
		logger.Warn("narrative analysis disabled", zap.Error(err))
	} else {
		narrator = openaiTransport.NewNarrator(&openaiTransport.NarratorConfig{
			Config: openaiTransport.Config{
				APIKey:   cfg.Narrative.APIKey,
				BaseURL:  cfg.Narrative.BaseURL,
				Model:    cfg.Narrative.Model,
				Provider: cfg.Embedding.Provider,
				Logger:   logger,
			},
			MaxTokens:   cfg.Narrative.MaxTokens,
			Temperature: cfg.Narrative.Temperature,
		})
	}

	callTimeout := time.Duration(cfg.Similarity.CallTimeout) * time.Second
	a.Similarity = similarityuc.New(a.Embedder, a.Index, narrator, &a.Config, similarityuc.Options{
		TopK:          cfg.Similarity.TopK,
		NarrativeTopK: cfg.Similarity.NarrativeTopK,
		DisplayChars:  cfg.Similarity.DisplayChars,
		Keywords:      cfg.Similarity.Keywords,
		MatchKeywords: cfg.Similarity.MatchKeywords,
		CallTimeout:   callTimeout,
	})
	a.Search = searchuc.New(a.Embedder, a.Index, &a.Config, callTimeout)
	a.Indexer = indexeruc.New(a.Embedder, a.Index, indexeruc.Options{
		BatchSize:   cfg.Indexer.BatchSize,
		BatchDelay:  cfg.IndexerBatchDelay(),
		MaxTokens:   cfg.Indexer.MaxTokens,
		CallTimeout: callTimeout,
	})

	catalog, err := taxonomy.Load(cfg.Gaps.TaxonomyDir)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	a.Planner = gapuc.NewPlanner(&a.Config, gapuc.PlannerOptions{
		Topics:      catalog.Topics,
		Funnel:      catalog.Funnel,
		Rules:       domgap.DefaultRules(),
		FunnelRules: domgap.DefaultFunnelRules(),
		TopicFloor:  cfg.Gaps.MinSimilarity,
		FunnelFloor: cfg.Gaps.FunnelMinSimilarity,
	})
	a.Analyzer = gapuc.NewAnalyzer(a.Embedder, a.Index, gapuc.AnalyzerOptions{
		BatchSize:   cfg.Gaps.BatchSize,
		BatchDelay:  cfg.GapBatchDelay(),
		Workers:     cfg.Gaps.Workers,
		CallTimeout: time.Duration(cfg.Gaps.CallTimeoutSec) * time.Second,
		SearchLimit: cfg.Gaps.SearchLimit,
	})

	var runPinger healthuc.Pinger
	if opts.RunStore {
		runs, err := gaprun.Open(ctx, cfg.Gaps.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open gap run store: %w", err)
		}
		a.closers = append(a.closers, runs.Close)
		a.Runner = gapuc.NewRunner(a.Analyzer, a.Planner, runs, logger)
		runPinger = runs
	}

	a.Health = healthuc.New(a.Index, embeddingHealth{a.Embedder}, runPinger)

	ok = true
	return a, nil
}

// Close releases stores in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// The cache needs a key-value store and is skipped on the qdrant driver.
func buildEmbedder(cfg config.Config, kv *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	if kv != nil {
		embedder = embcache.New(embedder, kv, embcache.Options{
			KeyPrefix:  cfg.Storage.KeyPrefix,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			TTL:        time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimensions, logger,
	)
}

// redisIndex adds the store's liveness probe to the index repository.
type redisIndex struct {
	*indexrepo.Repo
	store *dbRedis.Store
}

func (r *redisIndex) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

// embeddingHealth probes the provider when the chain supports it.
type embeddingHealth struct {
	embedder domain.Embedder
}

func (h embeddingHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
