// Package db defines the storage contracts that the Redis/Valkey backend
// fulfils: chunk hashes with an FT vector index, plus a small key/value
// cache for embeddings.
package db

import (
	"context"
	"time"
)

// Store is everything the backend offers. Repositories declare the subset
// they use.
//
//nolint:interfacebloat // composition root only
type Store interface {
	Pinger
	ChunkStore
	Cache
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one hash written by HSetMulti.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// ChunkStore writes and removes chunk hashes.
type ChunkStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
}

// Cache is a byte value store with optional expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager creates, inspects and drops FT indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)
}

// Searcher runs KNN queries.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
