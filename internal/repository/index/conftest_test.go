package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/simcheck/internal/db"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexInfoFn   func(ctx context.Context, name string) (*db.IndexInfo, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	dropIndexFn   func(ctx context.Context, name string) error
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	delFn         func(ctx context.Context, keys ...string) error
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.indexInfoFn != nil {
		return m.indexInfoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name}, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, Options{KeyPrefix: "simcheck:", Dimensions: 4, HNSWM: 16, HNSWEFConstruct: 200}), ms
}

func testPoint(t *testing.T, file string, chunk int, dims int) document.Point {
	t.Helper()
	d, err := document.New(document.Source{
		Title: "Picker guide", Category: "guides", URL: "https://example.com/picker", File: file,
	}, "The picker lets users upload files.", chunk, 2)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return document.Point{Document: d, Vector: make([]float32, dims)}
}
