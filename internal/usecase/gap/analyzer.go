// Package gap runs gap analyses: combinations are checked against the index
// in rate-limited batches, each batch fanned out under a worker limit.
package gap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/logger"
	"github.com/kailas-cloud/simcheck/internal/metrics"
)

// AnalyzerOptions tunes batch execution.
type AnalyzerOptions struct {
	BatchSize   int
	BatchDelay  time.Duration // minimum spacing between batch starts; 0 disables pacing
	Workers     int           // concurrent combinations per batch
	CallTimeout time.Duration // per embedding or search call; 0 disables
	SearchLimit int           // matches fetched per combination
}

func (o AnalyzerOptions) normalize() AnalyzerOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Workers <= 0 {
		o.Workers = o.BatchSize
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 5
	}
	return o
}

// Job is one analysis over prepared combinations.
type Job struct {
	Variant      domgap.Variant
	Collection   string
	Combinations []domgap.Combination
	Floor        float64
	Scorer       domgap.Scorer
	// OnBatch, when set, is called after every batch from the analyzing goroutine.
	OnBatch func(BatchReport)
}

// BatchReport describes one finished batch.
type BatchReport struct {
	Batch    int // one-based
	Batches  int
	Analyzed int // combinations attempted so far
	Gaps     []domgap.Gap
	Err      error
}

// Result is the outcome of an analysis. Cancelled results hold the gaps of
// the batches that completed before cancellation.
type Result struct {
	Gaps          []domgap.Gap
	Stats         domgap.Stats
	Analyzed      int
	Batches       int
	BatchesDone   int
	FailedBatches []int
	Cancelled     bool
}

// Analyzer checks combinations against the index.
type Analyzer struct {
	embed Embedder
	index Index
	opts  AnalyzerOptions
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(embed Embedder, index Index, opts AnalyzerOptions) *Analyzer {
	return &Analyzer{embed: embed, index: index, opts: opts.normalize()}
}

// Analyze processes job.Combinations in batches. A batch whose embedding or
// search call fails contributes no gaps and the run continues. Cancelling ctx
// stops the run at the next batch boundary. Gaps come back in descending
// priority regardless of completion order.
func (a *Analyzer) Analyze(ctx context.Context, job Job) Result {
	combos := job.Combinations
	batches := a.batchCount(len(combos))
	res := Result{Gaps: []domgap.Gap{}, FailedBatches: []int{}, Batches: batches}
	log := logger.FromContext(ctx).With(
		zap.String("variant", string(job.Variant)),
		zap.String("collection", job.Collection),
	)

	var limiter *rate.Limiter
	if a.opts.BatchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(a.opts.BatchDelay), 1)
	}

	for b := range batches {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				res.Cancelled = true
				break
			}
		}

		start := b * a.opts.BatchSize
		end := min(start+a.opts.BatchSize, len(combos))
		gaps, err := a.runBatch(ctx, job, combos[start:end])
		if err != nil && ctx.Err() != nil {
			// cancelled mid-batch: its partial work is discarded
			res.Cancelled = true
			break
		}

		res.Analyzed = end
		res.BatchesDone++
		report := BatchReport{Batch: b + 1, Batches: batches, Analyzed: end, Err: err}
		if err != nil {
			res.FailedBatches = append(res.FailedBatches, b+1)
			metrics.GapBatchesTotal.WithLabelValues(string(job.Variant), "failed").Inc()
			log.Warn("gap batch failed, skipping",
				zap.Int("batch", b+1), zap.Int("batches", batches), zap.Error(err))
		} else {
			res.Gaps = append(res.Gaps, gaps...)
			report.Gaps = gaps
			metrics.GapBatchesTotal.WithLabelValues(string(job.Variant), "ok").Inc()
			for _, g := range gaps {
				metrics.GapsFoundTotal.WithLabelValues(string(job.Variant), string(domgap.LevelOf(g.OpportunityScore))).Inc()
			}
			log.Debug("gap batch done",
				zap.Int("batch", b+1), zap.Int("batches", batches), zap.Int("gaps", len(gaps)))
		}
		if job.OnBatch != nil {
			job.OnBatch(report)
		}
	}

	SortGaps(res.Gaps)
	res.Stats = domgap.Summarize(res.Gaps)
	log.Info("gap analysis finished",
		zap.Int("analyzed", res.Analyzed),
		zap.Int("gaps", len(res.Gaps)),
		zap.Int("failed_batches", len(res.FailedBatches)),
		zap.Bool("cancelled", res.Cancelled),
	)
	return res
}

// runBatch analyses one batch concurrently. The first failing call cancels
// the rest of the batch and fails it as a whole.
func (a *Analyzer) runBatch(ctx context.Context, job Job, batch []domgap.Combination) ([]domgap.Gap, error) {
	found := make([]*domgap.Gap, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, c := range batch {
		g.Go(func() error {
			gp, err := a.assess(gctx, job, c)
			if err != nil {
				return fmt.Errorf("%q: %w", c.SearchQuery, err)
			}
			found[i] = gp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gaps := make([]domgap.Gap, 0, len(batch))
	for _, gp := range found {
		if gp != nil {
			gaps = append(gaps, *gp)
		}
	}
	return gaps, nil
}

func (a *Analyzer) assess(ctx context.Context, job Job, c domgap.Combination) (*domgap.Gap, error) {
	embedCtx, cancel := a.callContext(ctx)
	emb, err := a.embed.Embed(embedCtx, c.SearchQuery)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	searchCtx, cancel := a.callContext(ctx)
	matches, err := a.index.Search(searchCtx, job.Collection, emb.Embedding, a.opts.SearchLimit)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	g, ok := domgap.Assess(c, matches, job.Floor, job.Scorer)
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (a *Analyzer) batchCount(n int) int {
	return (n + a.opts.BatchSize - 1) / a.opts.BatchSize
}

func (a *Analyzer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.CallTimeout)
}

// SortGaps orders gaps by descending priority, keeping their order on ties.
func SortGaps(gaps []domgap.Gap) {
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].PriorityScore > gaps[j].PriorityScore })
}
