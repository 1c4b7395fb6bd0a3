package chi

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
	"github.com/kailas-cloud/simcheck/internal/domain/retrieval"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
	domsim "github.com/kailas-cloud/simcheck/internal/domain/similarity"
	gapuc "github.com/kailas-cloud/simcheck/internal/usecase/gap"
	healthuc "github.com/kailas-cloud/simcheck/internal/usecase/health"
	searchuc "github.com/kailas-cloud/simcheck/internal/usecase/search"
)

type fakeSimilarity struct {
	err      error
	analyzed narrative.Request
	panics   bool
}

func (f *fakeSimilarity) Check(ctx context.Context, draft, source string) (*domsim.Report, error) {
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	if draft == "" {
		return nil, fmt.Errorf("%w: draft text is required", domain.ErrInvalidInput)
	}
	domain.UsageFromContext(ctx).AddTokens(7)
	return &domsim.Report{
		Recommendation: domsim.ForPercent(91),
		Source:         source,
		TotalChecked:   1,
		Matches:        []domsim.Match{{ID: 1, Title: "Upload files", Similarity: "91.0"}},
	}, nil
}

func (f *fakeSimilarity) AnalyzeOne(_ context.Context, req narrative.Request) (domsim.Analysis, error) {
	f.analyzed = req
	if f.err != nil {
		return domsim.Analysis{}, f.err
	}
	return domsim.Analysis{Title: req.Title, SimilarityPercent: req.SimilarityPercent, Narrative: "**same**"}, nil
}

type fakeSearch struct {
	err         error
	lastQuery   searchuc.Query
	lastFeature string
	lastText    string
}

func (f *fakeSearch) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	domain.UsageFromContext(ctx).AddTokens(3)
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 3}, nil
}

func (f *fakeSearch) Search(_ context.Context, q searchuc.Query) ([]result.Result, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	doc := document.Reconstruct(42, "Picker guide", "Docs", "open the picker", 0, 2, "https://x/picker", "picker.json")
	return []result.Result{result.New(doc, 0.876)}, nil
}

func (f *fakeSearch) Context(_ context.Context, _, query string, _ int) (retrieval.Context, error) {
	f.lastText = query
	if f.err != nil {
		return retrieval.Context{}, f.err
	}
	return retrieval.Assemble(query, nil), nil
}

func (f *fakeSearch) FeatureContext(ctx context.Context, source, feature string, limit int) (retrieval.Context, error) {
	f.lastFeature = feature
	return f.Context(ctx, source, retrieval.FeatureQuery(feature), limit)
}

type fakeRuns struct {
	runs      map[string]*domgap.Run
	started   gapuc.Request
	cancelled []string
}

func newFakeRuns() *fakeRuns {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeRuns{runs: map[string]*domgap.Run{
		"done": {
			ID:     "done",
			Params: domgap.RunParams{Variant: domgap.VariantTopicAspect},
			Status: domgap.RunCompleted,
			Gaps: []domgap.Gap{{
				Combination:      domgap.Combination{Topic: "React", Aspect: "performance", SearchQuery: "React performance"},
				OpportunityScore: 90,
				Reason:           "No existing content",
			}},
			CreatedAt: created,
		},
		"live": {ID: "live", Status: domgap.RunRunning, CreatedAt: created},
	}}
}

func (f *fakeRuns) Start(_ context.Context, req gapuc.Request) (*domgap.Run, error) {
	if _, err := domgap.ParseVariant(req.Variant); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	f.started = req
	return &domgap.Run{ID: "new-run", Status: domgap.RunRunning}, nil
}

func (f *fakeRuns) Get(_ context.Context, id string) (*domgap.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, fmt.Errorf("get run %s: %w", id, domain.ErrRunNotFound)
	}
	return run, nil
}

func (f *fakeRuns) List(_ context.Context, limit int) ([]domgap.Run, error) {
	out := []domgap.Run{*f.runs["done"], *f.runs["live"]}
	return out[:min(limit, len(out))], nil
}

func (f *fakeRuns) Cancel(_ context.Context, id string) error {
	run, ok := f.runs[id]
	switch {
	case !ok:
		return domain.ErrRunNotFound
	case run.Status.Finished():
		return fmt.Errorf("%w: %s", domain.ErrRunFinished, id)
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

type fakeHealth struct {
	status healthuc.Status
}

func (f *fakeHealth) Check(context.Context) healthuc.Report {
	return healthuc.Report{Status: f.status, Checks: map[string]healthuc.CheckResult{}}
}
