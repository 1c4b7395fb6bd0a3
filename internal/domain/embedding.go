package domain

import "context"

// Embedder turns text into a vector. Drafts, search queries, gap queries and
// indexed chunks all go through the same chain: provider, cache, metrics.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can probe their provider
// without spending tokens.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is one vector and the tokens billed for it. Cache hits
// report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
