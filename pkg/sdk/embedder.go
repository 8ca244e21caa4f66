package concierge

import "context"

// Embedder turns a text into a vector. Queries and listings go through
// the same Embedder, see WithEmbeddingPrefixes.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbedderFunc adapts a plain function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) (EmbeddingResult, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return f(ctx, text)
}

// BatchEmbedder is an optional extension. Build sends whole chunks of
// listings through it instead of one request per text.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker is an optional extension. When present, Health reports
// an "embedding" check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Usage is the token count reported by the provider.
type Usage struct {
	PromptTokens int
	TotalTokens  int
}

// EmbeddingResult is one vector with its usage.
type EmbeddingResult struct {
	Embedding []float32
	Usage
}

// BatchEmbeddingResult holds one vector per input text, in input order.
type BatchEmbeddingResult struct {
	Embeddings [][]float32
	Usage
}
