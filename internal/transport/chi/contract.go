package chi

import (
	"context"

	"github.com/kailas-cloud/simcheck/internal/domain"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
	"github.com/kailas-cloud/simcheck/internal/domain/retrieval"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
	domsim "github.com/kailas-cloud/simcheck/internal/domain/similarity"
	gapuc "github.com/kailas-cloud/simcheck/internal/usecase/gap"
	healthuc "github.com/kailas-cloud/simcheck/internal/usecase/health"
	searchuc "github.com/kailas-cloud/simcheck/internal/usecase/search"
)

// SimilarityService checks drafts against published content.
type SimilarityService interface {
	Check(ctx context.Context, draft, source string) (*domsim.Report, error)
	AnalyzeOne(ctx context.Context, req narrative.Request) (domsim.Analysis, error)
}

// SearchService serves embeddings, raw search and retrieval context.
type SearchService interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
	Search(ctx context.Context, q searchuc.Query) ([]result.Result, error)
	Context(ctx context.Context, source, query string, limit int) (retrieval.Context, error)
	FeatureContext(ctx context.Context, source, feature string, limit int) (retrieval.Context, error)
}

// GapRuns manages background gap analyses.
type GapRuns interface {
	Start(ctx context.Context, req gapuc.Request) (*domgap.Run, error)
	Get(ctx context.Context, id string) (*domgap.Run, error)
	List(ctx context.Context, limit int) ([]domgap.Run, error)
	Cancel(ctx context.Context, id string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
