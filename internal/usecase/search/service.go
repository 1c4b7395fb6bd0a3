// Package search serves raw embeddings, raw nearest-neighbor search and
// retrieval context assembly.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/retrieval"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Default result limits.
const (
	DefaultLimit        = 5
	DefaultContextLimit = 10
	MaxLimit            = 100
)

// Query is a raw search. Vector takes precedence over Text when both are set.
type Query struct {
	Text   string
	Vector []float32
	Source string
	Limit  int
}

// Service handles embedding passthrough and search.
type Service struct {
	embed       Embedder
	index       Index
	sources     CollectionResolver
	callTimeout time.Duration
}

// New creates a search service. callTimeout bounds each external call; 0 disables it.
func New(embed Embedder, index Index, sources CollectionResolver, callTimeout time.Duration) *Service {
	return &Service{embed: embed, index: index, sources: sources, callTimeout: callTimeout}
}

// Embed returns the embedding of text.
func (s *Service) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	res, err := s.embed.Embed(callCtx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return res, nil
}

// Search runs a nearest-neighbor search on the source's collection.
func (s *Service) Search(ctx context.Context, q Query) ([]result.Result, error) {
	if len(q.Vector) == 0 && strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("%w: query text or embedding is required", domain.ErrInvalidInput)
	}
	limit, err := normalizeLimit(q.Limit, DefaultLimit)
	if err != nil {
		return nil, err
	}

	if len(q.Vector) > 0 {
		results, err := s.search(ctx, s.sources.CollectionFor(q.Source), q.Vector, limit)
		if errors.Is(err, domain.ErrVectorDimMismatch) {
			// The caller sent a vector of the wrong size.
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return results, err
	}

	res, err := s.Embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, s.sources.CollectionFor(q.Source), res.Embedding, limit)
}

// Context searches for query and assembles the retrieval context.
func (s *Service) Context(ctx context.Context, source, query string, limit int) (retrieval.Context, error) {
	limit, err := normalizeLimit(limit, DefaultContextLimit)
	if err != nil {
		return retrieval.Context{}, err
	}
	res, err := s.Embed(ctx, query)
	if err != nil {
		return retrieval.Context{}, err
	}
	results, err := s.search(ctx, s.sources.CollectionFor(source), res.Embedding, limit)
	if err != nil {
		return retrieval.Context{}, err
	}
	return retrieval.Assemble(query, results), nil
}

// FeatureContext is Context for a named product feature.
func (s *Service) FeatureContext(ctx context.Context, source, feature string, limit int) (retrieval.Context, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	return s.Context(ctx, source, retrieval.FeatureQuery(feature), limit)
}

func (s *Service) search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	results, err := s.index.Search(callCtx, collection, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

func normalizeLimit(limit, def int) (int, error) {
	switch {
	case limit == 0:
		return def, nil
	case limit < 0 || limit > MaxLimit:
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidInput, MaxLimit)
	default:
		return limit, nil
	}
}
