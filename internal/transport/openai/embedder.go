package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/metrics"
)

const embeddingService = "embeddings"

// Embedder calls an OpenAI-compatible /embeddings endpoint, one text per request.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the provider settings shared by Embedder and Narrator.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int // embeddings only; 0 keeps the model default
	Provider   string
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     logger,
	}
}

// Embed vectorizes one text. Blank input is rejected before any call is made.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: text to embed is empty", domain.ErrInvalidInput)
	}
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.dimensions,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err == nil && len(resp.Data) == 0 {
		err = domain.NewUpstreamError(embeddingService, 0, "", errors.New("response carried no vectors"))
	} else if err != nil {
		err = upstreamError(embeddingService, err)
	}
	e.observe(start, err, resp.Usage.TotalTokens)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

func (e *Embedder) observe(start time.Time, err error, tokens int) {
	model := string(e.model)
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		status = "rate_limited"
	case err != nil:
		status = "error"
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, status).Inc()
	if err != nil {
		e.logger.Debug("embedding call failed", zap.String("model", model), zap.String("status", status), zap.Error(err))
		return
	}
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(time.Since(start).Seconds())
	if tokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model).Add(float64(tokens))
	}
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return upstreamError(embeddingService, err)
	}
	return nil
}
