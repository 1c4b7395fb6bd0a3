package similarity

import (
	"context"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Index is the nearest-neighbor lookup over a source collection.
type Index interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error)
}

// Embedder vectorizes the draft.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Narrator produces the qualitative comparison of a draft with one document.
type Narrator interface {
	Analyze(ctx context.Context, req narrative.Request) (string, error)
}

// CollectionResolver maps a source key onto its collection.
type CollectionResolver interface {
	CollectionFor(source string) string
}
