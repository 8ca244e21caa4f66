package query

import (
	"strings"

	"github.com/kailas-cloud/concierge/internal/domain"
)

// Query is a classified free-text question.
type Query struct {
	raw              string
	normalized       string
	hasTimeReference bool
}

// New trims and classifies raw query text. Blank text is rejected.
func New(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{}, domain.ErrInvalidQuery
	}
	normalized := strings.ToLower(trimmed)
	return Query{
		raw:              trimmed,
		normalized:       normalized,
		hasTimeReference: ContainsTimeReference(normalized),
	}, nil
}

// Raw returns the query as submitted (trimmed).
func (q Query) Raw() string { return q.raw }

// Normalized returns the lowercase query.
func (q Query) Normalized() string { return q.normalized }

// HasTimeReference reports whether the query names a day or date window.
func (q Query) HasTimeReference() bool { return q.hasTimeReference }

// ContainsAny reports whether the lowercase query contains any of the keywords.
func (q Query) ContainsAny(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(q.normalized, kw) {
			return true
		}
	}
	return false
}
