package ingest

import (
	"context"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/document"
)

// DocumentWriter recreates a collection and writes embedded documents into it.
type DocumentWriter interface {
	Name() string
	Recreate(ctx context.Context) error
	UpsertBatch(ctx context.Context, items []document.Embedded) error
}

// Embedder vectorizes document pages.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
