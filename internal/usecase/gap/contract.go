package gap

import (
	"context"

	"github.com/kailas-cloud/simcheck/internal/domain"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Index is the nearest-neighbor lookup over a collection.
type Index interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error)
}

// Embedder vectorizes combination queries.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// RunStore persists gap runs.
type RunStore interface {
	Create(ctx context.Context, run *domgap.Run) error
	Update(ctx context.Context, run *domgap.Run) error
	Get(ctx context.Context, id string) (*domgap.Run, error)
	List(ctx context.Context, limit int) ([]domgap.Run, error)
}

// CollectionResolver maps a source key onto its collection.
type CollectionResolver interface {
	CollectionFor(source string) string
}
