package index

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/kailas-cloud/simcheck/internal/db"
	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

func TestEnsureCollection_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureCollection(context.Background(), "froala_blogs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "simcheck:froala_blogs:idx" {
		t.Errorf("index name = %s", got.Name)
	}
	if got.Prefix != "simcheck:froala_blogs:" {
		t.Errorf("prefix = %v", got.Prefix)
	}
	vec := got.Fields[len(got.Fields)-1]
	if vec.Kind != db.FieldVector || vec.Dim != 4 || vec.M != 16 {
		t.Errorf("vector field = %+v", vec)
	}
}

func TestEnsureCollection_ExistingMatchingDim(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }
	ms.indexInfoFn = func(_ context.Context, name string) (*db.IndexInfo, error) {
		return &db.IndexInfo{Name: name, VectorDim: 4}, nil
	}
	if err := repo.EnsureCollection(context.Background(), "froala_blogs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_ExistingOtherDim(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }
	ms.indexInfoFn = func(_ context.Context, name string) (*db.IndexInfo, error) {
		return &db.IndexInfo{Name: name, VectorDim: 1536}, nil
	}

	err := repo.EnsureCollection(context.Background(), "froala_blogs")
	var dimErr *domain.DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if dimErr.Expected != 1536 || dimErr.Got != 4 {
		t.Errorf("dims = %+v", dimErr)
	}
}

func TestUpsert_WritesPayload(t *testing.T) {
	repo, ms := newTestRepo(t)
	var items []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, in []db.HashSetItem) error {
		items = in
		return nil
	}

	p := testPoint(t, "docs/picker.json", 1, 4)
	if err := repo.Upsert(context.Background(), "filestack_blogs", []document.Point{p}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	wantKey := "simcheck:filestack_blogs:" + strconv.FormatInt(p.Document.ID(), 10)
	if items[0].Key != wantKey {
		t.Errorf("key = %s, want %s", items[0].Key, wantKey)
	}
	f := items[0].Fields
	if f["title"] != "Picker guide" || f["chunk_index"] != "1" || f["total_chunks"] != "2" {
		t.Errorf("fields = %v", f)
	}
	if len(f["vector"]) != 16 {
		t.Errorf("vector blob = %d bytes, want 16", len(f["vector"]))
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(context.Context, []db.HashSetItem) error {
		t.Fatal("nothing must be written when a vector has the wrong size")
		return nil
	}

	p := testPoint(t, "docs/picker.json", 0, 3)
	err := repo.Upsert(context.Background(), "froala_blogs", []document.Point{p})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearch_HydratesResults(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "simcheck:froala_blogs:idx" || q.K != 10 {
			t.Errorf("query = %+v", q)
		}
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "simcheck:froala_blogs:1", Score: 0.61, Fields: map[string]string{
				"id": "1", "title": "Second", "content": "b", "chunk_index": "0", "total_chunks": "1",
			}},
			{Key: "simcheck:froala_blogs:2", Score: 0.93, Fields: map[string]string{
				"id": "2", "title": "First", "content": "a", "chunk_index": "3", "total_chunks": "4",
				"source_url": "https://froala.com/blog/first",
			}},
		}}, nil
	}

	rs, err := repo.Search(context.Background(), "froala_blogs", make([]float32, 4), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("results = %d", len(rs))
	}
	top := rs[0].Document()
	if top.Title() != "First" || top.ChunkIndex() != 3 || top.SourceURL() != "https://froala.com/blog/first" {
		t.Errorf("top = %+v", top)
	}
	if rs[0].Score() != 0.93 {
		t.Errorf("results must be sorted by score, got %v first", rs[0].Score())
	}
}

func TestSearch_Errors(t *testing.T) {
	repo, ms := newTestRepo(t)

	if _, err := repo.Search(context.Background(), "froala_blogs", make([]float32, 8), 5); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected dim mismatch, got %v", err)
	}

	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}
	_, err := repo.Search(context.Background(), "missing", make([]float32, 4), 5)
	if !errors.Is(err, domain.ErrCollectionNotFound) || !strings.Contains(err.Error(), "missing") {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexInfoFn = func(_ context.Context, name string) (*db.IndexInfo, error) {
		return &db.IndexInfo{Name: name, NumDocs: 12}, nil
	}
	n, err := repo.Count(context.Background(), "froala_blogs")
	if err != nil || n != 12 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestDropCollection(t *testing.T) {
	repo, ms := newTestRepo(t)
	var dropped string
	ms.dropIndexFn = func(_ context.Context, name string) error {
		dropped = name
		return db.ErrIndexNotFound
	}
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "simcheck:froala_blogs:*" {
			t.Errorf("pattern = %q", pattern)
		}
		keys := make([]string, dropBatch+1)
		for i := range keys {
			keys[i] = "simcheck:froala_blogs:" + strconv.Itoa(i)
		}
		return keys, nil
	}
	var calls, deleted int
	ms.delFn = func(_ context.Context, keys ...string) error {
		calls++
		deleted += len(keys)
		return nil
	}

	if err := repo.DropCollection(context.Background(), "froala_blogs"); err != nil {
		t.Fatalf("DropCollection: %v", err)
	}
	if dropped != "simcheck:froala_blogs:idx" {
		t.Errorf("dropped = %q", dropped)
	}
	if calls != 2 || deleted != dropBatch+1 {
		t.Errorf("del calls = %d, keys = %d", calls, deleted)
	}
}

func TestDropCollection_DropError(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("boom")
	ms.dropIndexFn = func(context.Context, string) error { return boom }
	ms.scanFn = func(context.Context, string) ([]string, error) {
		t.Error("scan after failed drop")
		return nil, nil
	}
	if err := repo.DropCollection(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
