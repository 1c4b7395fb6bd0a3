package index

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/kailas-cloud/simcheck/internal/db"
	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// dropBatch caps the keys per DEL.
const dropBatch = 500

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	DropIndex(ctx context.Context, name string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
}

// Options configures key layout and the HNSW index.
type Options struct {
	KeyPrefix       string // e.g. "simcheck:"
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo is a vector index over Redis/Valkey hashes with an FT HNSW index per
// collection. Keys are <prefix><collection>:<id>.
type Repo struct {
	store store
	opts  Options
}

// New creates a vector index repository.
func New(s store, opts Options) *Repo {
	return &Repo{store: s, opts: opts}
}

// Dimensions returns the configured vector size.
func (r *Repo) Dimensions() int { return r.opts.Dimensions }

// EnsureCollection creates the collection index if it is missing. An existing
// index with a different vector size is a DimensionMismatchError.
func (r *Repo) EnsureCollection(ctx context.Context, collection string) error {
	def, err := db.NewIndex(r.indexName(collection), r.keyPrefix(collection)).
		Text(fieldTitle).
		Tag(fieldCategory).
		Numeric(fieldChunkIndex).
		Vector(fieldVector, r.opts.Dimensions, r.opts.HNSWM, r.opts.HNSWEFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	err = r.store.CreateIndex(ctx, def)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", collection, err)
	}

	info, err := r.store.IndexInfo(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("inspect index %s: %w", collection, err)
	}
	if info.VectorDim > 0 && info.VectorDim != r.opts.Dimensions {
		return &domain.DimensionMismatchError{Expected: info.VectorDim, Got: r.opts.Dimensions}
	}
	return nil
}

// Upsert writes points in one pipelined round-trip. Existing chunks with the
// same id are overwritten.
func (r *Repo) Upsert(ctx context.Context, collection string, points []document.Point) error {
	items := make([]db.HashSetItem, 0, len(points))
	for i := range points {
		if err := domain.CheckDimensions(points[i].Vector, r.opts.Dimensions); err != nil {
			return err
		}
		items = append(items, db.HashSetItem{
			Key:    r.key(collection, points[i].Document.ID()),
			Fields: buildHashFields(&points[i]),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	return nil
}

// Search returns the limit nearest chunks, most similar first.
func (r *Repo) Search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error) {
	if err := domain.CheckDimensions(vector, r.opts.Dimensions); err != nil {
		return nil, err
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(collection),
		VectorField:  fieldVector,
		Vector:       vector,
		K:            limit,
		ReturnFields: payloadFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	if sr == nil {
		return nil, nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		results = append(results, result.New(parseHashFields(e.Fields), e.Score))
	}
	result.SortByScore(results)
	return results, nil
}

// Count returns the number of chunks in a collection.
func (r *Repo) Count(ctx context.Context, collection string) (int, error) {
	info, err := r.store.IndexInfo(ctx, r.indexName(collection))
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return info.NumDocs, nil
}

// DropCollection removes the index and every chunk hash of a collection.
// A missing collection is not an error.
func (r *Repo) DropCollection(ctx context.Context, collection string) error {
	if err := r.store.DropIndex(ctx, r.indexName(collection)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", collection, err)
	}
	keys, err := r.store.Scan(ctx, r.keyPrefix(collection)+"*")
	if err != nil {
		return fmt.Errorf("scan %s: %w", collection, err)
	}
	for batch := range slices.Chunk(keys, dropBatch) {
		if err := r.store.Del(ctx, batch...); err != nil {
			return fmt.Errorf("delete chunks of %s: %w", collection, err)
		}
	}
	return nil
}

func (r *Repo) keyPrefix(collection string) string {
	return r.opts.KeyPrefix + collection + ":"
}

func (r *Repo) key(collection string, id int64) string {
	return r.keyPrefix(collection) + strconv.FormatInt(id, 10)
}

func (r *Repo) indexName(collection string) string {
	return r.opts.KeyPrefix + collection + ":idx"
}
