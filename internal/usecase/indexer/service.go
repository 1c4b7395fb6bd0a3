// Package indexer chunks source documents, embeds every chunk and writes the
// points to a collection.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/chunk"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
	"github.com/kailas-cloud/simcheck/internal/logger"
	"github.com/kailas-cloud/simcheck/internal/metrics"
)

// Options tunes indexing.
type Options struct {
	BatchSize   int           // documents processed concurrently
	BatchDelay  time.Duration // minimum spacing between batch starts
	MaxTokens   int           // chunk budget
	CallTimeout time.Duration // per embedding or upsert call
}

func (o Options) normalize() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = chunk.DefaultMaxTokens
	}
	return o
}

// Failure is a document that could not be indexed.
type Failure struct {
	Source document.Source
	Err    error
}

// Report summarizes an indexing run.
type Report struct {
	Collection string
	Documents  int
	Indexed    int
	Chunks     int
	Failures   []Failure
	Cancelled  bool
}

// Service indexes documents.
type Service struct {
	embed Embedder
	index Index
	opts  Options
}

// New creates an indexer.
func New(embed Embedder, index Index, opts Options) *Service {
	return &Service{embed: embed, index: index, opts: opts.normalize()}
}

// Index writes texts into collection, creating it when missing. A document
// that fails is reported and skipped; the rest of its batch is unaffected.
// Cancelling ctx stops at the next batch boundary.
func (s *Service) Index(ctx context.Context, collection string, texts []document.SourceText) (Report, error) {
	if collection == "" {
		return Report{}, fmt.Errorf("collection is required: %w", domain.ErrInvalidInput)
	}
	rep := Report{Collection: collection, Documents: len(texts)}

	ensureCtx, cancel := s.callContext(ctx)
	err := s.index.EnsureCollection(ensureCtx, collection)
	cancel()
	if err != nil {
		return rep, fmt.Errorf("ensure collection: %w", err)
	}

	log := logger.FromContext(ctx).With(zap.String("collection", collection))
	var limiter *rate.Limiter
	if s.opts.BatchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.opts.BatchDelay), 1)
	}

	for start := 0; start < len(texts); start += s.opts.BatchSize {
		if ctx.Err() != nil {
			rep.Cancelled = true
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				rep.Cancelled = true
				break
			}
		}

		batch := texts[start:min(start+s.opts.BatchSize, len(texts))]
		chunks, errs := s.indexBatch(ctx, collection, batch)
		for i, err := range errs {
			if err != nil {
				rep.Failures = append(rep.Failures, Failure{Source: batch[i].Source, Err: err})
				log.Warn("document not indexed", zap.String("title", batch[i].Source.Title), zap.Error(err))
				continue
			}
			rep.Indexed++
			rep.Chunks += chunks[i]
		}
		log.Info("batch indexed",
			zap.Int("done", start+len(batch)), zap.Int("documents", len(texts)), zap.Int("chunks", rep.Chunks))
	}

	return rep, nil
}

// Drop deletes a collection so the next Index starts from an empty one.
func (s *Service) Drop(ctx context.Context, collection string) error {
	if collection == "" {
		return fmt.Errorf("collection is required: %w", domain.ErrInvalidInput)
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	if err := s.index.DropCollection(callCtx, collection); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	logger.FromContext(ctx).Info("collection dropped", zap.String("collection", collection))
	return nil
}

// Count returns the number of chunks stored in a collection.
func (s *Service) Count(ctx context.Context, collection string) (int, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	return s.index.Count(callCtx, collection)
}

func (s *Service) indexBatch(ctx context.Context, collection string, batch []document.SourceText) ([]int, []error) {
	chunks := make([]int, len(batch))
	errs := make([]error, len(batch))

	var g errgroup.Group
	for i := range batch {
		g.Go(func() error {
			chunks[i], errs[i] = s.indexDocument(ctx, collection, batch[i])
			return nil
		})
	}
	_ = g.Wait()
	return chunks, errs
}

func (s *Service) indexDocument(ctx context.Context, collection string, st document.SourceText) (int, error) {
	parts := chunk.Split(st.Text, s.opts.MaxTokens)
	if len(parts) == 0 {
		return 0, errors.New("document has no text")
	}

	points := make([]document.Point, 0, len(parts))
	for i, part := range parts {
		doc, err := document.New(st.Source, part, i, len(parts))
		if err != nil {
			return 0, fmt.Errorf("chunk %d: %w", i, err)
		}
		embedCtx, cancel := s.callContext(ctx)
		emb, err := s.embed.Embed(embedCtx, part)
		cancel()
		if err != nil {
			metrics.IndexedChunksTotal.WithLabelValues(collection, "failed").Inc()
			return 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		points = append(points, document.Point{Document: doc, Vector: emb.Embedding})
	}

	upsertCtx, cancel := s.callContext(ctx)
	err := s.index.Upsert(upsertCtx, collection, points)
	cancel()
	if err != nil {
		metrics.IndexedChunksTotal.WithLabelValues(collection, "failed").Add(float64(len(points)))
		return 0, fmt.Errorf("upsert: %w", err)
	}
	metrics.IndexedChunksTotal.WithLabelValues(collection, "ok").Add(float64(len(points)))
	return len(points), nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}
