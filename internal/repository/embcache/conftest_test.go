package embcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/db"
	"github.com/kailas-cloud/simcheck/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// blockingEmbedder holds every call until release is closed.
type blockingEmbedder struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	b.calls.Add(1)
	select {
	case <-b.release:
	case <-ctx.Done():
		return domain.EmbeddingResult{}, ctx.Err()
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 2, 3}, PromptTokens: 7, TotalTokens: 7}, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, Options{
		KeyPrefix:  "simcheck:",
		Model:      "text-embedding-3-large",
		Dimensions: 3,
		TTL:        time.Hour,
	}, nil, zap.NewNop())
	return ce, ms
}
