// Package embcache keeps embeddings in the key/value store so repeated
// drafts, queries and chunks are not paid for twice.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/simcheck/internal/db"
	"github.com/kailas-cloud/simcheck/internal/domain"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options scope keys to one model and vector size, so switching either
// never serves a stale vector.
type Options struct {
	KeyPrefix  string
	Model      string
	Dimensions int
	TTL        time.Duration // zero keeps entries forever
}

// CachedEmbedder is a read-through cache in front of an Embedder.
// Concurrent requests for the same text share one lookup and at most one
// provider call.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	opts       Options
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	flights    singleflight.Group
}

// New wraps inner. cacheTotal is labelled by result ("hit", "miss") and may be nil.
func New(inner domain.Embedder, s store, opts Options, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: s, opts: opts, cacheTotal: cacheTotal, logger: logger}
}

// flight is the outcome shared by every caller of one key. Tokens are
// billed to the first caller that claims them.
type flight struct {
	result  domain.EmbeddingResult
	hit     bool
	claimed atomic.Bool
}

// Embed returns the cached vector or embeds text and caches the result.
// Cache failures degrade to a miss and never fail the call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)
	v, err, _ := c.flights.Do(key, func() (any, error) {
		if vec, ok := c.lookup(ctx, key); ok {
			return &flight{result: domain.EmbeddingResult{Embedding: vec}, hit: true}, nil
		}
		res, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.save(ctx, key, res.Embedding)
		return &flight{result: res}, nil
	})
	if err != nil {
		c.count("miss")
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	f := v.(*flight)
	out := domain.EmbeddingResult{Embedding: f.result.Embedding}
	if f.hit {
		c.count("hit")
		return out, nil
	}
	c.count("miss")
	if f.claimed.CompareAndSwap(false, true) {
		out.PromptTokens, out.TotalTokens = f.result.PromptTokens, f.result.TotalTokens
	}
	return out, nil
}

// HealthCheck probes the wrapped embedder.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // decorator passthrough
	}
	return nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.opts.KeyPrefix + "emb:" + c.opts.Model + ":" + strconv.Itoa(c.opts.Dimensions) + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		c.logger.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil || domain.CheckDimensions(vec, c.opts.Dimensions) != nil {
		c.logger.Debug("discarding unusable cache entry", zap.String("key", key), zap.Int("bytes", len(data)))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	if err := c.store.SetWithTTL(ctx, key, encodeVector(vec), c.opts.TTL); err != nil {
		c.logger.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("cached vector has %d bytes", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec, nil
}
