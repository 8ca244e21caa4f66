package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/concierge/internal/db"
	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/search/filter"
)

// Reserved hash fields; everything else is document metadata.
const (
	ContentField = "__content"
	VectorField  = "__vector"
)

// store is the consumer interface for collection reads (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CountDocuments(ctx context.Context, index string) (int, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo is a semantically indexed collection backed by an FT index.
type Repo struct {
	store    store
	embedder domain.Embedder
	keys     Keyspace
}

// New creates a collection repository. The embedder vectorizes query text.
func New(s store, embedder domain.Embedder, keys Keyspace) *Repo {
	return &Repo{store: s, embedder: embedder, keys: keys}
}

// Name returns the collection name.
func (r *Repo) Name() string { return r.keys.Name }

// Search embeds text and returns up to k matches ordered by descending similarity.
func (r *Repo) Search(ctx context.Context, text string, k int, f filter.Expression) ([]document.Match, error) {
	emb, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.QueryUsageFrom(ctx).Record(emb.TotalTokens)

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		Index:  r.keys.IndexName(),
		Filter: f,
		Vector: emb.Embedding,
		K:      k,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("collection %s: %w", r.keys.Name, domain.ErrCollectionNotFound)
		}
		return nil, fmt.Errorf("search %s: %w", r.keys.Name, err)
	}

	matches := make([]document.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		matches = append(matches, document.Match{
			Document: r.toDocument(e),
			Score:    e.Score,
		})
	}
	document.SortByScore(matches)
	return matches, nil
}

// Exists reports whether the collection index exists.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.keys.IndexName())
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", r.keys.Name, err)
	}
	return ok, nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.CountDocuments(ctx, r.keys.IndexName())
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.keys.Name, err)
	}
	return n, nil
}

func (r *Repo) toDocument(e db.SearchEntry) document.Document {
	meta := make(map[string]string, len(e.Fields))
	var content string
	for k, v := range e.Fields {
		switch k {
		case ContentField:
			content = v
		case VectorField:
			// raw embedding bytes
		default:
			meta[k] = v
		}
	}
	return document.New(r.keys.ID(e.Key), content, meta)
}
