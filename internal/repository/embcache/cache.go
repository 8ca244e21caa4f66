// Package embcache memoizes embeddings in the KV store, keyed by model and text.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/db"
	"github.com/kailas-cloud/concierge/internal/domain"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config controls the key layout and expiry of cached vectors.
type Config struct {
	Prefix string // e.g. "concierge:emb:"; the model name follows it in every key
	Model  string
	TTL    time.Duration // zero keeps vectors forever
}

// Lookup outcomes recorded on the cache counter.
const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// Embedder serves vectors from the cache and asks next only for misses.
// Cache failures degrade to misses and never fail an embedding.
type Embedder struct {
	next    domain.Embedder
	kv      kv
	cfg     Config
	log     *zap.Logger
	lookups *prometheus.CounterVec
}

// New wraps next with a read-through cache.
func New(next domain.Embedder, store kv, cfg Config, log *zap.Logger) *Embedder {
	return &Embedder{next: next, kv: store, cfg: cfg, log: log}
}

// WithCounter records lookup outcomes on a counter labeled by "result".
func (e *Embedder) WithCounter(cv *prometheus.CounterVec) *Embedder {
	e.lookups = cv
	return e
}

// Key returns the cache key of text.
func (e *Embedder) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return e.cfg.Prefix + e.cfg.Model + ":" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector with zero tokens, or embeds and stores it.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := e.Key(text)
	if vec, ok := e.load(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	res, err := e.next.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	e.save(ctx, key, res.Embedding)
	return res, nil
}

// BatchEmbed embeds each distinct missing text once, in a single batch call to next.
// Vectors come back in input order; duplicates share a vector.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	out := make([][]float32, len(texts))
	positions := make(map[string][]int, len(texts))
	var pending []string
	for i, t := range texts {
		if _, seen := positions[t]; !seen {
			pending = append(pending, t)
		}
		positions[t] = append(positions[t], i)
	}

	misses := pending[:0]
	for _, t := range pending {
		vec, ok := e.load(ctx, e.Key(t))
		if !ok {
			misses = append(misses, t)
			continue
		}
		for _, i := range positions[t] {
			out[i] = vec
		}
	}
	if len(misses) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: out}, nil
	}

	res, err := domain.BatchEmbed(ctx, e.next, misses)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed %d misses: %w", len(misses), err)
	}
	if len(res.Embeddings) != len(misses) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d embeddings for %d texts: %w",
			len(res.Embeddings), len(misses), domain.ErrEmbeddingProviderError)
	}
	for j, t := range misses {
		e.save(ctx, e.Key(t), res.Embeddings[j])
		for _, i := range positions[t] {
			out[i] = res.Embeddings[j]
		}
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

func (e *Embedder) load(ctx context.Context, key string) ([]float32, bool) {
	data, err := e.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		e.count(outcomeMiss)
		return nil, false
	case err != nil:
		e.count(outcomeError)
		e.log.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	vec, err := db.DecodeVector(data)
	if err != nil || len(vec) == 0 {
		e.count(outcomeError)
		e.log.Warn("discarding corrupt cached embedding", zap.String("key", key), zap.Int("bytes", len(data)))
		return nil, false
	}
	e.count(outcomeHit)
	return vec, true
}

func (e *Embedder) save(ctx context.Context, key string, vec []float32) {
	if err := e.kv.SetWithTTL(ctx, key, db.EncodeVector(vec), e.cfg.TTL); err != nil {
		e.log.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (e *Embedder) count(outcome string) {
	if e.lookups != nil {
		e.lookups.WithLabelValues(outcome).Inc()
	}
}
