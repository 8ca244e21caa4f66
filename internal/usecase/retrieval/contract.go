package retrieval

import (
	"context"

	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/search/filter"
)

// Collection is a semantically indexed document store.
type Collection interface {
	Name() string
	// Search returns up to k matches ordered by descending score in [0,1].
	Search(ctx context.Context, text string, k int, f filter.Expression) ([]document.Match, error)
}
