package answer

import (
	"context"

	"github.com/kailas-cloud/concierge/internal/domain/document"
	"github.com/kailas-cloud/concierge/internal/domain/entity"
	"github.com/kailas-cloud/concierge/internal/domain/query"
	"github.com/kailas-cloud/concierge/internal/domain/record"
)

// Retriever fetches ranked matches for a classified query.
type Retriever interface {
	Retrieve(ctx context.Context, q query.Query, t entity.Type) ([]document.Match, error)
}

// Summarizer composes the answer sentence.
type Summarizer interface {
	Summarize(q query.Query, records []record.Record) string
	Rule(q query.Query, records []record.Record) string
}
