package domain

import (
	"context"
	"fmt"
)

// Embedder turns one text into a vector. Implemented by the provider client and its decorators.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is the optional many-texts-per-call extension of Embedder.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker probes provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is one vector plus the tokens the provider billed for it.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds vectors in input order and the summed token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

func (r *BatchEmbeddingResult) add(one EmbeddingResult) {
	r.Embeddings = append(r.Embeddings, one.Embedding)
	r.PromptTokens += one.PromptTokens
	r.TotalTokens += one.TotalTokens
}

// EmbedEach embeds texts sequentially, stopping at the first failure.
func EmbedEach(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	res := BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for i, text := range texts {
		one, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
		res.add(one)
	}
	return res, nil
}

// BatchEmbed prefers the native batch call of e and falls back to EmbedEach.
func BatchEmbed(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	be, ok := e.(BatchEmbedder)
	if !ok {
		return EmbedEach(ctx, e, texts)
	}
	res, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return res, nil
}

// Prefixed prepends a role instruction ("query: ", "passage: ") to every text.
type Prefixed struct {
	next   Embedder
	prefix string
}

// WithPrefix wraps next so texts are embedded as prefix+text. An empty prefix returns next.
func WithPrefix(next Embedder, prefix string) Embedder {
	if prefix == "" {
		return next
	}
	return &Prefixed{next: next, prefix: prefix}
}

// Embed implements Embedder.
func (p *Prefixed) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return p.next.Embed(ctx, p.prefix+text)
}

// BatchEmbed implements BatchEmbedder.
func (p *Prefixed) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	in := make([]string, len(texts))
	for i, t := range texts {
		in[i] = p.prefix + t
	}
	return BatchEmbed(ctx, p.next, in)
}
