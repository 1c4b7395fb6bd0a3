package search

import (
	"context"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Index is the nearest-neighbor lookup over a collection.
type Index interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// CollectionResolver maps a source key onto its collection.
type CollectionResolver interface {
	CollectionFor(source string) string
}
