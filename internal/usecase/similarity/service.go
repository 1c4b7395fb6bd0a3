// Package similarity assembles the similarity report for a draft.
package similarity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/comparison"
	"github.com/kailas-cloud/simcheck/internal/domain/keyword"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
	domsim "github.com/kailas-cloud/simcheck/internal/domain/similarity"
	"github.com/kailas-cloud/simcheck/internal/logger"
	"github.com/kailas-cloud/simcheck/internal/metrics"
)

// Options tunes report assembly.
type Options struct {
	TopK          int           // matches fetched from the index
	NarrativeTopK int           // matches that get a narrative analysis
	DisplayChars  int           // display truncation of match content
	Keywords      int           // draft and top-match keywords
	MatchKeywords int           // keywords per ranked match
	CallTimeout   time.Duration // per external call; 0 disables
}

// Service produces similarity reports.
type Service struct {
	embed    Embedder
	index    Index
	narrator Narrator
	sources  CollectionResolver
	opts     Options
}

// New creates a similarity service. narrator may be nil, in which case
// reports carry no narrative analyses.
func New(embed Embedder, index Index, narrator Narrator, sources CollectionResolver, opts Options) *Service {
	return &Service{embed: embed, index: index, narrator: narrator, sources: sources, opts: opts}
}

// Check embeds the draft, ranks the closest documents of the source's
// collection and builds the report. Embedding and search failures abort the
// report; narrative failures are reported inline per analysis.
func (s *Service) Check(ctx context.Context, draft, source string) (*domsim.Report, error) {
	if strings.TrimSpace(draft) == "" {
		return nil, fmt.Errorf("%w: draft text is required", domain.ErrInvalidInput)
	}
	collection := s.sources.CollectionFor(source)
	log := logger.FromContext(ctx).With(zap.String("source", source), zap.String("collection", collection))

	matches, err := s.rank(ctx, collection, draft, s.opts.TopK)
	if err != nil {
		return nil, err
	}

	rec := domsim.Recommend(matches)
	metrics.RecommendationsTotal.WithLabelValues(string(rec.Action)).Inc()

	report := &domsim.Report{
		Recommendation: rec,
		DraftKeywords:  keyword.Extract(draft, s.opts.Keywords),
		Source:         source,
		TotalChecked:   len(matches),
		Matches:        make([]domsim.Match, 0, len(matches)),
	}
	if len(matches) > 0 {
		top := matches[0].Document()
		report.SimilarKeywords = keyword.Extract(top.Content(), s.opts.Keywords)
		cmp := comparison.Compare(draft, top.Content())
		report.WordComparison = &cmp
	}
	for _, m := range matches {
		report.Matches = append(report.Matches, domsim.NewMatch(m, s.opts.DisplayChars, s.opts.MatchKeywords))
	}
	report.Analyses = s.analyses(ctx, draft, matches)

	log.Info("similarity check completed",
		zap.String("action", string(rec.Action)),
		zap.Int("matches", len(matches)),
		zap.Int("analyses", len(report.Analyses)),
	)
	return report, nil
}

// AnalyzeOne runs the narrative comparison of a draft with a single supplied document.
func (s *Service) AnalyzeOne(ctx context.Context, req narrative.Request) (domsim.Analysis, error) {
	if err := req.Validate(); err != nil {
		return domsim.Analysis{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if s.narrator == nil {
		return domsim.Analysis{}, domain.NewConfigurationError("narrative.api_key", "")
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	text, err := s.narrator.Analyze(callCtx, req)
	if err != nil {
		return domsim.Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return domsim.Analysis{
		Title:             req.Title,
		SimilarityPercent: req.SimilarityPercent,
		Narrative:         text,
		NarrativeHTML:     narrative.FormatHTML(text),
	}, nil
}

// rank embeds text and searches collection, each call under its own timeout.
func (s *Service) rank(ctx context.Context, collection, text string, limit int) ([]result.Result, error) {
	embedCtx, cancel := s.callContext(ctx)
	emb, err := s.embed.Embed(embedCtx, text)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embed draft: %w", err)
	}

	searchCtx, cancel := s.callContext(ctx)
	defer cancel()
	matches, err := s.index.Search(searchCtx, collection, emb.Embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return matches, nil
}

// analyses fans out narrative calls for the top matches. Results keep match
// order; a failed call fills its slot with the failure text.
func (s *Service) analyses(ctx context.Context, draft string, matches []result.Result) []domsim.Analysis {
	if s.narrator == nil {
		return []domsim.Analysis{}
	}
	n := min(s.opts.NarrativeTopK, len(matches))
	out := make([]domsim.Analysis, n)

	var g errgroup.Group
	for i := range n {
		d := matches[i].Document()
		pct := domsim.FormatPercent(matches[i].Percent())
		out[i] = domsim.Analysis{Title: d.Title(), URL: d.SourceURL(), SimilarityPercent: pct}

		g.Go(func() error {
			callCtx, cancel := s.callContext(ctx)
			defer cancel()

			text, err := s.narrator.Analyze(callCtx, narrative.Request{
				DraftText:         draft,
				Title:             d.Title(),
				Content:           d.Content(),
				SimilarityPercent: pct,
			})
			if err != nil {
				logger.FromContext(ctx).Warn("narrative analysis failed",
					zap.String("title", d.Title()), zap.Error(err))
				out[i].Error = narrative.FailureText(err)
				return nil
			}
			out[i].Narrative = text
			out[i].NarrativeHTML = narrative.FormatHTML(text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}
