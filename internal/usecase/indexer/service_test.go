package indexer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
)

type fakeEmbedder struct {
	fail string // texts containing this fail
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	if f.fail != "" && strings.Contains(text, f.fail) {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 0, 1}, TotalTokens: 1}, nil
}

type fakeIndex struct {
	mu        sync.Mutex
	ensured   []string
	ensureErr error
	points    map[int64]document.Point
	upserts   int
}

func (f *fakeIndex) EnsureCollection(_ context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, collection)
	return f.ensureErr
}

func (f *fakeIndex) Upsert(_ context.Context, _ string, points []document.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.points == nil {
		f.points = make(map[int64]document.Point)
	}
	f.upserts++
	for _, p := range points {
		f.points[p.Document.ID()] = p
	}
	return nil
}

func (f *fakeIndex) DropCollection(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = nil
	return nil
}

func (f *fakeIndex) Count(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points), nil
}

func texts(n int) []document.SourceText {
	out := make([]document.SourceText, n)
	for i := range n {
		name := string(rune('a' + i))
		out[i] = document.SourceText{
			Source: document.Source{Title: "Doc " + name, File: name + ".json"},
			Text:   "body of " + name,
		}
	}
	return out
}

func TestIndex_AllDocuments(t *testing.T) {
	idx := &fakeIndex{}
	svc := New(&fakeEmbedder{}, idx, Options{BatchSize: 2})

	rep, err := svc.Index(context.Background(), "docs", texts(5))
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if rep.Documents != 5 || rep.Indexed != 5 || rep.Chunks != 5 || len(rep.Failures) != 0 {
		t.Errorf("report = %+v", rep)
	}
	if len(idx.ensured) != 1 || idx.ensured[0] != "docs" {
		t.Errorf("ensured = %v", idx.ensured)
	}
	if len(idx.points) != 5 || idx.upserts != 5 {
		t.Errorf("points = %d upserts = %d", len(idx.points), idx.upserts)
	}
}

func TestIndex_ChunksLongDocument(t *testing.T) {
	idx := &fakeIndex{}
	svc := New(&fakeEmbedder{}, idx, Options{MaxTokens: 2})

	long := []document.SourceText{{
		Source: document.Source{Title: "Long", File: "long.json"},
		Text:   "abcd efgh ijkl mnop",
	}}
	rep, err := svc.Index(context.Background(), "docs", long)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Chunks != 2 {
		t.Fatalf("chunks = %d", rep.Chunks)
	}
	for _, p := range idx.points {
		if p.Document.TotalChunks() != 2 {
			t.Errorf("total chunks = %d", p.Document.TotalChunks())
		}
	}
}

func TestIndex_FailureIsolated(t *testing.T) {
	idx := &fakeIndex{}
	svc := New(&fakeEmbedder{fail: "of c"}, idx, Options{BatchSize: 5})

	rep, err := svc.Index(context.Background(), "docs", texts(4))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Indexed != 3 || len(rep.Failures) != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Failures[0].Source.File != "c.json" {
		t.Errorf("failed = %+v", rep.Failures[0].Source)
	}
	if len(idx.points) != 3 {
		t.Errorf("points = %d", len(idx.points))
	}
}

func TestIndex_Idempotent(t *testing.T) {
	idx := &fakeIndex{}
	svc := New(&fakeEmbedder{}, idx, Options{})
	for range 2 {
		if _, err := svc.Index(context.Background(), "docs", texts(3)); err != nil {
			t.Fatal(err)
		}
	}
	if len(idx.points) != 3 {
		t.Errorf("points = %d, reindexing must overwrite", len(idx.points))
	}
}

func TestIndex_EnsureFails(t *testing.T) {
	idx := &fakeIndex{ensureErr: &domain.DimensionMismatchError{Expected: 1536, Got: 3}}
	_, err := New(&fakeEmbedder{}, idx, Options{}).Index(context.Background(), "docs", texts(1))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
	if len(idx.points) != 0 {
		t.Error("nothing should be written")
	}
}

func TestIndex_MissingCollection(t *testing.T) {
	_, err := New(&fakeEmbedder{}, &fakeIndex{}, Options{}).Index(context.Background(), "", texts(1))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIndex_CancelledBetweenBatches(t *testing.T) {
	idx := &fakeIndex{}
	svc := New(&fakeEmbedder{}, idx, Options{BatchSize: 1, BatchDelay: 50 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()
	rep, err := svc.Index(ctx, "docs", texts(6))
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Cancelled {
		t.Error("expected cancelled report")
	}
	if rep.Indexed == 0 || rep.Indexed >= 6 {
		t.Errorf("indexed = %d", rep.Indexed)
	}
}

func TestDropThenCount(t *testing.T) {
	idx := &fakeIndex{}
	svc := New(&fakeEmbedder{}, idx, Options{})
	ctx := context.Background()

	if _, err := svc.Index(ctx, "docs", texts(3)); err != nil {
		t.Fatal(err)
	}
	if n, _ := svc.Count(ctx, "docs"); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
	if err := svc.Drop(ctx, "docs"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if n, _ := svc.Count(ctx, "docs"); n != 0 {
		t.Errorf("count after drop = %d", n)
	}
	if err := svc.Drop(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty collection: %v", err)
	}
}
