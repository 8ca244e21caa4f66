// Package embedding holds the embedder decorator shared by the API and the indexer.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/metrics"
)

// DefaultChunkSize is the largest number of texts sent in one provider request.
const DefaultChunkSize = 256

// RetryPolicy bounds retries of failures marked domain.ErrTransient.
type RetryPolicy struct {
	MaxAttempts    int // 1 or less sends each request once
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Options configures a Guarded embedder.
type Options struct {
	Provider  string
	Model     string
	ChunkSize int
	Retry     RetryPolicy
}

// Guarded splits batches into provider-sized chunks, retries transient failures
// with jittered exponential backoff and logs each call.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type Guarded struct {
	next domain.Embedder
	opts Options
	log  *zap.Logger
}

// NewGuarded wraps next.
func NewGuarded(next domain.Embedder, opts Options, log *zap.Logger) *Guarded {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}
	return &Guarded{next: next, opts: opts, log: log.With(
		zap.String("provider", opts.Provider),
		zap.String("model", opts.Model),
	)}
}

// Embed implements domain.Embedder.
func (g *Guarded) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	res, err := retry(ctx, g, func() (domain.EmbeddingResult, error) {
		return g.next.Embed(ctx, text)
	})
	if err != nil {
		g.log.Error("embedding failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	g.log.Debug("embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed implements domain.BatchEmbedder. Chunks run in order; the first
// chunk that exhausts its retries fails the whole batch.
func (g *Guarded) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for lo := 0; lo < len(texts); lo += g.opts.ChunkSize {
		chunk := texts[lo:min(lo+g.opts.ChunkSize, len(texts))]
		res, err := retry(ctx, g, func() (domain.BatchEmbeddingResult, error) {
			return domain.BatchEmbed(ctx, g.next, chunk)
		})
		if err != nil {
			g.log.Error("batch embedding failed",
				zap.Int("chunk_start", lo),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embed texts %d-%d: %w", lo, lo+len(chunk)-1, err)
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	g.log.Debug("batch embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("texts", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (g *Guarded) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if g.opts.Retry.InitialBackoff > 0 {
		b.InitialInterval = g.opts.Retry.InitialBackoff
	}
	if g.opts.Retry.MaxBackoff > 0 {
		b.MaxInterval = g.opts.Retry.MaxBackoff
	}
	return b
}

// retry runs op until it succeeds, fails permanently or runs out of attempts.
func retry[T any](ctx context.Context, g *Guarded, op func() (T, error)) (T, error) {
	if g.opts.Retry.MaxAttempts == 1 {
		return op()
	}
	return backoff.Retry(ctx,
		func() (T, error) {
			v, err := op()
			if err != nil && !errors.Is(err, domain.ErrTransient) {
				return v, backoff.Permanent(err)
			}
			return v, err
		},
		backoff.WithBackOff(g.backOff()),
		backoff.WithMaxTries(uint(g.opts.Retry.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.EmbeddingRetriesTotal.WithLabelValues(g.opts.Provider, g.opts.Model).Inc()
			g.log.Warn("retrying embedding request", zap.Duration("wait", wait), zap.Error(err))
		}),
	)
}
