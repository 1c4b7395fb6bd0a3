package indexer

import (
	"context"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

// Index is the write side of the vector index.
type Index interface {
	EnsureCollection(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, points []document.Point) error
	DropCollection(ctx context.Context, collection string) error
	Count(ctx context.Context, collection string) (int, error)
}

// Embedder vectorizes chunk text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
