// Package embcache decorates an Embedder with a Redis-backed cache keyed by
// content hash. It matters when a remote embedding backend is substituted
// for the local hashing one; the decorator is only wired when Redis is
// configured.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dkravets/docqa/internal/core/ports"
)

const keyPrefix = "docqa:emb:"

// ErrNotFound is returned by a Store when the key has no cached value.
var ErrNotFound = errors.New("embcache: key not found")

// Store is the consumer interface for the cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type CachedEmbedder struct {
	inner      ports.Embedder
	store      Store
	cacheTotal *prometheus.CounterVec
	logger     *slog.Logger
}

// New creates the caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"); nil disables counting.
func New(inner ports.Embedder, store Store, cacheTotal *prometheus.CounterVec, logger *slog.Logger) *CachedEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      store,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if vec, ok := c.lookup(ctx, text); ok {
			c.count("hit")
			out[i] = vec
			continue
		}
		c.count("miss")
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) > 0 {
		vectors, err := c.inner.Embed(ctx, missTexts)
		if err != nil {
			return nil, fmt.Errorf("embed texts: %w", err)
		}
		if len(vectors) != len(missTexts) {
			return nil, fmt.Errorf("embed texts: got %d vectors for %d inputs", len(vectors), len(missTexts))
		}
		for j, vec := range vectors {
			out[missIdx[j]] = vec
			c.put(ctx, missTexts[j], vec)
		}
	}
	return out, nil
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.lookup(ctx, text); ok {
		c.count("hit")
		return vec, nil
	}
	c.count("miss")

	vec, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	c.put(ctx, text, vec)
	return vec, nil
}

func (c *CachedEmbedder) count(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) lookup(ctx context.Context, text string) ([]float32, bool) {
	key := cacheKey(text)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("embed_cache_get_failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("embed_cache_decode_failed", "key", key, "error", err)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, text string, vec []float32) {
	key := cacheKey(text)
	if err := c.store.Set(ctx, key, vectorToBytes(vec)); err != nil {
		c.logger.Warn("embed_cache_set_failed", "key", key, "error", err)
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid cached embedding: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
