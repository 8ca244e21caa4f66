package concierge

import (
	"errors"

	"github.com/kailas-cloud/concierge/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrInvalidEntityType      = domain.ErrInvalidEntityType
	ErrRetrievalFailed        = domain.ErrRetrievalFailed
	ErrMalformedDocument      = domain.ErrMalformedDocument
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrCollectionNotFound     = domain.ErrCollectionNotFound
)

// errUnhealthy marks a failed health check in SDK metrics.
var errUnhealthy = errors.New("concierge: unhealthy")
